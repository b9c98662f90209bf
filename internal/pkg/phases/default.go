package phases

import "github.com/ManuelReschke/PhaseGate/internal/pkg/entitlements"

// Phase ids of the built-in workflow.
const (
	BuyerPersona               = "buyer-persona"
	BusinessCanvas             = "business-canvas"
	BrandVoice                 = "brand-voice"
	CompetitorAnalysis         = "competitor-analysis"
	IntelligentContentStrategy = "intelligent-content-strategy"
	ContentGenerator           = "content-generator"
	SEOAnalyzer                = "seo-analyzer"
	ContentCalendar            = "content-calendar"
	ViralityPredictor          = "virality-predictor"
	PodcastStudio              = "podcast-studio"
	ROICalculator              = "roi-calculator"
	AutomationHub              = "automation-hub"
)

// Default is the compiled-in workflow served by the application.
var Default = MustCatalog(
	Phase{
		ID:           BuyerPersona,
		Name:         "Buyer Persona",
		Description:  "Describe who you are selling to.",
		Order:        1,
		RequiredPlan: entitlements.TierFree,
	},
	Phase{
		ID:           BusinessCanvas,
		Name:         "Business Canvas",
		Description:  "Map value proposition, channels and revenue streams.",
		Order:        2,
		Requires:     []string{BuyerPersona},
		RequiredPlan: entitlements.TierFree,
	},
	Phase{
		ID:           BrandVoice,
		Name:         "Brand Voice",
		Description:  "Define tone, vocabulary and messaging pillars.",
		Order:        3,
		Requires:     []string{BuyerPersona},
		RequiredPlan: entitlements.TierFree,
	},
	Phase{
		ID:           CompetitorAnalysis,
		Name:         "Competitor Analysis",
		Description:  "Benchmark competitors and find positioning gaps.",
		Order:        4,
		Requires:     []string{BusinessCanvas},
		RequiredPlan: entitlements.TierFree,
	},
	Phase{
		ID:           IntelligentContentStrategy,
		Name:         "Intelligent Content Strategy",
		Description:  "Turn persona, voice and positioning into a content plan.",
		Order:        5,
		Requires:     []string{BrandVoice, CompetitorAnalysis},
		RequiredPlan: entitlements.TierFree,
	},
	Phase{
		ID:           ContentGenerator,
		Name:         "Content Generator",
		Description:  "Generate social posts from the content strategy.",
		Order:        6,
		Requires:     []string{IntelligentContentStrategy},
		RequiredPlan: entitlements.TierPro,
	},
	Phase{
		ID:           SEOAnalyzer,
		Name:         "SEO Analyzer",
		Description:  "Audit pages and keywords against the strategy.",
		Order:        7,
		Requires:     []string{IntelligentContentStrategy},
		RequiredPlan: entitlements.TierPro,
	},
	Phase{
		ID:           ContentCalendar,
		Name:         "Content Calendar",
		Description:  "Schedule generated content across channels.",
		Order:        8,
		Requires:     []string{ContentGenerator},
		RequiredPlan: entitlements.TierPro,
	},
	Phase{
		ID:           ViralityPredictor,
		Name:         "Virality Predictor",
		Description:  "Score drafts for reach and audience fatigue.",
		Order:        9,
		Requires:     []string{ContentGenerator},
		RequiredPlan: entitlements.TierPremium,
	},
	Phase{
		ID:           PodcastStudio,
		Name:         "Podcast Studio",
		Description:  "Produce podcast scripts from existing content.",
		Order:        10,
		Requires:     []string{ContentGenerator},
		RequiredPlan: entitlements.TierPremium,
	},
	Phase{
		ID:           ROICalculator,
		Name:         "ROI Calculator",
		Description:  "Project campaign returns from calendar and spend.",
		Order:        11,
		Requires:     []string{ContentCalendar},
		RequiredPlan: entitlements.TierGold,
	},
	Phase{
		ID:           AutomationHub,
		Name:         "Automation Hub",
		Description:  "Run the whole pipeline on a schedule.",
		Order:        12,
		Requires:     []string{ContentCalendar, ViralityPredictor},
		RequiredPlan: entitlements.TierGold,
	},
)
