package model

// Questionnaire is the validated input document for a job. It is read-only
// once a job has been created.
type Questionnaire struct {
	ProjectMetadata   ProjectMetadata   `json:"project_metadata" validate:"required"`
	ProductDefinition ProductDefinition `json:"product_definition" validate:"required"`
	TargetAudience    TargetAudience    `json:"target_audience" validate:"required"`
	MarketContext     MarketContext     `json:"market_context" validate:"required"`
	CreativeGoal      CreativeGoal      `json:"the_creative_goal" validate:"required"`
}

type ProjectMetadata struct {
	BrandName     string `json:"brand_name" validate:"required"`
	WebsiteURL    string `json:"website_url" validate:"required,url"`
	TargetCountry string `json:"target_country" validate:"required"`
	Industry      string `json:"industry" validate:"required"`
}

type ProductDefinition struct {
	ProductDescription       string `json:"product_description" validate:"required"`
	CoreProblemSolved        string `json:"core_problem_solved" validate:"required"`
	UniqueSellingProposition string `json:"unique_selling_proposition" validate:"required"`
}

type TargetAudience struct {
	Demographics    string `json:"demographics" validate:"required"`
	Psychographics  string `json:"psychographics" validate:"required"`
	CulturalNuances string `json:"cultural_nuances,omitempty"`
}

type MarketContext struct {
	MainCompetitors         []string `json:"main_competitors" validate:"required,min=1"`
	CurrentMarketingEfforts string   `json:"current_marketing_efforts,omitempty"`
	KnownCustomerObjections string   `json:"known_customer_objections,omitempty"`
}

type CreativeGoal struct {
	PrimaryObjective   string   `json:"primary_objective" validate:"required"`
	DesiredToneOfVoice string   `json:"desired_tone_of_voice" validate:"required"`
	SpecificChannels   []string `json:"specific_channels" validate:"required,min=1"`
}

// ValidationResult is the outcome of the AI validation gate.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Feedback []string `json:"feedback"`
}
