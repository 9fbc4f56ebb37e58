package scoring

import (
	"regexp"

	"github.com/noah-isme/ideaforge-api/internal/models"
)

// Score limits every configured band must respect.
const (
	MaxNonsensicalScore = 15
	MinLegitimateScore  = 50
)

// Band is an inclusive score range.
type Band struct {
	Min int
	Max int
}

// Clamp pins value into the band.
func (b Band) Clamp(value int) int {
	if value < b.Min {
		return b.Min
	}
	if value > b.Max {
		return b.Max
	}
	return value
}

// Contains reports whether value lies inside the band.
func (b Band) Contains(value int) bool {
	return value >= b.Min && value <= b.Max
}

// NonsensicalRule flags a self-contradicting business description.
type NonsensicalRule struct {
	Name    string
	Pattern *regexp.Regexp
	Score   int
	Issue   string
}

// LegitimateRule recognises a well-understood business model and sets a score floor.
type LegitimateRule struct {
	Name    string
	Pattern *regexp.Regexp
	Floor   int
}

// CategoryKeywords maps a category to the words that suggest it.
type CategoryKeywords struct {
	Category models.IdeaCategory
	Keywords []string
}

// PersonaHint maps a word stem in the idea text to a user persona label.
type PersonaHint struct {
	Stem  string
	Label string
}

// Lexicon holds the keyword sets the signal extractor looks for.
type Lexicon struct {
	ProblemKeywords  []string
	SolutionKeywords []string
	BusinessTerms    []string
	MashSequences    []string
	Stopwords        map[string]struct{}
	RepeatRunLength  int
}

// Policy is the single table of rules and bands used by validation, fallback and reconciliation.
type Policy struct {
	Lexicon Lexicon

	NonsensicalRules []NonsensicalRule
	MashScore        int
	RepetitionScore  int

	LegitimateRules []LegitimateRule
	PlacePattern    *regexp.Regexp
	PlaceBonus      int
	MaxFloor        int

	BaseScore     int
	MinValidScore int

	NonsensicalBand Band
	LegitimateBand  Band
	DefaultBand     Band

	ReconcileLegitimate Band
	ReconcileDefault    Band
	Headroom            Band
	ExternalWeight      float64

	Categories []CategoryKeywords
	Personas   []PersonaHint
}

// Option customises a Policy.
type Option func(*Policy)

// WithNonsensicalBand overrides the score range given to nonsensical ideas.
// Bands reaching above MaxNonsensicalScore are ignored.
func WithNonsensicalBand(band Band) Option {
	return func(p *Policy) {
		if band.Min >= 0 && band.Max >= band.Min && band.Max <= MaxNonsensicalScore {
			p.NonsensicalBand = band
		}
	}
}

// WithLegitimateBand overrides the validator band for recognised business models.
// Bands starting below MinLegitimateScore are ignored.
func WithLegitimateBand(band Band) Option {
	return func(p *Policy) {
		if band.Min >= MinLegitimateScore && band.Max >= band.Min && band.Max <= 100 {
			p.LegitimateBand = band
		}
	}
}

// WithMinValidScore overrides the validity threshold.
func WithMinValidScore(score int) Option {
	return func(p *Policy) {
		if score > 0 && score <= 100 {
			p.MinValidScore = score
		}
	}
}

// WithReconcileBands overrides the final score ranges for legitimate and other ideas.
func WithReconcileBands(legitimate, other Band) Option {
	return func(p *Policy) {
		if legitimate.Max >= legitimate.Min && legitimate.Min >= MinLegitimateScore && legitimate.Max <= 100 {
			p.ReconcileLegitimate = legitimate
		}
		if other.Max >= other.Min && other.Min > 0 && other.Max <= 100 {
			p.ReconcileDefault = other
		}
	}
}

// WithExternalWeight sets how much the external model's own score counts, between 0 and 1.
func WithExternalWeight(weight float64) Option {
	return func(p *Policy) {
		if weight >= 0 && weight <= 1 {
			p.ExternalWeight = weight
		}
	}
}

// DefaultPolicy returns the built-in rule tables with the supplied overrides applied.
func DefaultPolicy(opts ...Option) Policy {
	policy := Policy{
		Lexicon: Lexicon{
			ProblemKeywords: []string{
				"problem", "issue", "struggl", "pain", "difficult", "hard to", "frustrat", "lack", "need",
				"challenge", "expensive", "waste", "slow", "inefficient", "can't", "cannot", "missing", "no way to",
			},
			SolutionKeywords: []string{
				"solution", "solve", "app", "platform", "service", "tool", "help", "provide", "offer", "build",
				"create", "open", "launch", "automat", "connect", "deliver", "marketplace", "system",
			},
			BusinessTerms: []string{
				"customer", "market", "revenue", "profit", "sales", "pricing", "price", "subscription", "business",
				"startup", "users", "clients", "demand", "competitor", "margin", "funding", "investor", "b2b", "b2c",
			},
			MashSequences: []string{
				"asdf", "sdfg", "dfgh", "fghj", "ghjk", "hjkl", "qwer", "uiop", "zxcv", "xcvb", "cvbn", "vbnm", "jkl;",
			},
			Stopwords:       stopwords(),
			RepeatRunLength: 5,
		},

		NonsensicalRules: []NonsensicalRule{
			{
				Name:    "buy_high_sell_low",
				Pattern: regexp.MustCompile(`\bbuy(?:ing|s)?\b[^.!?]{0,40}?\b(?:high|expensive|premium|more)\b[^.!?]{0,40}?\bsell(?:ing|s)?\b[^.!?]{0,40}?\b(?:low|cheap|cheaper|less|lower)\b`),
				Score:   8,
				Issue:   "Buying high and selling low loses money on every sale",
			},
			{
				Name:    "sell_below_cost",
				Pattern: regexp.MustCompile(`\bsell(?:ing|s)?\b[^.!?]{0,50}?\b(?:below cost|at a loss|for less than (?:it costs|what (?:i|we) pay|cost))`),
				Score:   6,
				Issue:   "Selling below cost cannot sustain a business",
			},
			{
				Name:    "intentional_loss",
				Pattern: regexp.MustCompile(`\b(?:lose|losing)\s+(?:all\s+(?:my|our|the)\s+)?money\s+(?:on purpose|intentionally|deliberately)|\b(?:intentionally|deliberately|purposely)\s+(?:lose|losing|go(?:ing)? bankrupt)|\bguarantee[ds]?\s+(?:a\s+)?(?:loss|losses|to lose)`),
				Score:   5,
				Issue:   "The plan describes losing money on purpose",
			},
			{
				Name:    "pay_users_never_charge",
				Pattern: regexp.MustCompile(`\bnever\s+charge\s+(?:anyone|anything|customers)\b[^.!?]{0,40}?\bpay(?:ing)?\s+(?:customers|users|people)\b`),
				Score:   7,
				Issue:   "Paying users while never charging anyone has no revenue model",
			},
			{
				Name:    "free_without_revenue",
				Pattern: regexp.MustCompile(`\bgive\s+(?:away\s+)?(?:everything|all (?:products|items))\s+(?:away\s+)?for\s+free\b[^.!?]{0,30}?\b(?:no|without)\s+(?:revenue|income|money)\b`),
				Score:   6,
				Issue:   "Giving everything away with no income source is not a business",
			},
		},
		MashScore:       3,
		RepetitionScore: 4,

		LegitimateRules: []LegitimateRule{
			{
				Name:    "storefront",
				Pattern: regexp.MustCompile(`\b(?:open|start|launch|run|own)\w*\s+(?:(?:a|an|my|our|the)\s+)?(?:[a-z-]+\s+){0,2}?(?:bakery|cafe|coffee shop|restaurant|grocery|pharmacy|salon|barber ?shop|boutique|bookstore|gym|clothing store|food truck|shop|store|clinic|daycare|laundromat)\b`),
				Floor:   60,
			},
			{
				Name:    "service_business",
				Pattern: regexp.MustCompile(`\b(?:consulting|tutoring|cleaning|catering|delivery|plumbing|landscaping|photography|accounting|bookkeeping|web design|repair|fitness|personal training|marketing|translation|event planning)\s+(?:service|services|business|agency|company|firm)\b`),
				Floor:   55,
			},
			{
				Name:    "practice",
				Pattern: regexp.MustCompile(`\b(?:open|start|launch|run)\w*\s+(?:(?:a|an|my|our)\s+)?(?:[a-z-]+\s+){0,2}?(?:consultancy|agency|firm|franchise|practice|studio|workshop)\b`),
				Floor:   55,
			},
			{
				Name:    "online_commerce",
				Pattern: regexp.MustCompile(`\b(?:online store|e-?commerce|online marketplace|dropshipping|sell\w*\s+(?:[a-z-]+\s+){0,3}?online)\b`),
				Floor:   55,
			},
			{
				Name:    "education",
				Pattern: regexp.MustCompile(`\b(?:online course|coaching program|training program|learning platform|teach\w*\s+(?:[a-z-]+\s+){0,3}?(?:classes|courses|lessons))\b`),
				Floor:   55,
			},
			{
				Name:    "software_product",
				Pattern: regexp.MustCompile(`\b(?:saas|subscription (?:app|service|box|software)|mobile app|web app)\s+(?:for|that|to)\b`),
				Floor:   50,
			},
		},
		PlacePattern: regexp.MustCompile(`\b(?:in|near|around|across)\s+(?:islamabad|rawalpindi|lahore|karachi|peshawar|quetta|faisalabad|multan|london|manchester|new york|los angeles|chicago|toronto|dubai|delhi|mumbai|bangalore|singapore|sydney|berlin|paris|nairobi|lagos|cairo|istanbul|tokyo|my (?:city|town|neighbou?rhood))\b`),
		PlaceBonus:   5,
		MaxFloor:     65,

		BaseScore:     40,
		MinValidScore: 30,

		NonsensicalBand: Band{Min: 3, Max: 15},
		LegitimateBand:  Band{Min: 50, Max: 90},
		DefaultBand:     Band{Min: 5, Max: 75},

		ReconcileLegitimate: Band{Min: 55, Max: 85},
		ReconcileDefault:    Band{Min: 5, Max: 70},
		Headroom:            Band{Min: 3, Max: 97},
		ExternalWeight:      0.3,

		Categories: []CategoryKeywords{
			{Category: models.CategoryHealth, Keywords: []string{"health", "fitness", "clinic", "medical", "doctor", "patient", "wellness", "diet", "pharmacy", "gym", "mental", "therapy"}},
			{Category: models.CategoryEducation, Keywords: []string{"school", "course", "tutor", "teach", "learn", "student", "education", "training", "classes", "lesson"}},
			{Category: models.CategoryEntertainment, Keywords: []string{"game", "music", "movie", "film", "entertainment", "concert", "streaming", "festival", "podcast"}},
			{Category: models.CategorySocial, Keywords: []string{"community", "social", "volunteer", "charity", "neighbo", "nonprofit", "friends", "donat"}},
			{Category: models.CategoryTechnology, Keywords: []string{"app", "software", "platform", "ai", "website", "saas", "digital", "tech", "api", "blockchain", "robot", "automat"}},
			{Category: models.CategoryBusiness, Keywords: []string{"shop", "store", "bakery", "restaurant", "cafe", "retail", "sell", "business", "consult", "franchise", "wholesale", "market"}},
		},
		Personas: []PersonaHint{
			{Stem: "student", Label: "Students"},
			{Stem: "parent", Label: "Busy parents"},
			{Stem: "patient", Label: "Patients"},
			{Stem: "develop", Label: "Software developers"},
			{Stem: "freelanc", Label: "Freelancers"},
			{Stem: "retire", Label: "Retirees"},
			{Stem: "small business", Label: "Small business owners"},
			{Stem: "commuter", Label: "Daily commuters"},
			{Stem: "tourist", Label: "Tourists"},
			{Stem: "resident", Label: "Local residents"},
		},
	}

	for _, opt := range opts {
		opt(&policy)
	}

	return policy
}

func stopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "to", "of", "in", "on", "at", "for", "with", "by", "from", "into",
		"is", "are", "was", "were", "be", "been", "it", "its", "this", "that", "these", "those", "i", "we", "you",
		"they", "my", "our", "your", "their", "want", "would", "like", "just", "very", "also", "about", "more",
		"some", "will", "can", "could", "should", "have", "has", "had", "there", "what", "which", "who", "when",
		"where", "while", "than", "then", "them", "people", "everyone", "thing", "things", "idea", "make",
	}
	out := make(map[string]struct{}, len(words))
	for _, word := range words {
		out[word] = struct{}{}
	}
	return out
}
