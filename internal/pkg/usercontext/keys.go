package usercontext

// Locals key shared by middlewares and controllers
const KeyUserContext = "USER_CONTEXT"
