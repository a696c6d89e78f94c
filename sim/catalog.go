package sim

// Kind identifies a recyclable waste category.
type Kind string

const (
	KindPlasticBottle Kind = "plastic_bottle"
	KindPlasticBag    Kind = "plastic_bag"
	KindPaper         Kind = "paper"
	KindCardboard     Kind = "cardboard"
	KindMetal         Kind = "metal"
	KindGlass         Kind = "glass"
	KindFoodScraps    Kind = "food_scraps"
	KindTextiles      Kind = "textiles"
	KindYardWaste     Kind = "yard_waste"
	KindMedicalPPE    Kind = "medical_ppe"
)

var kindNames = map[Kind]string{
	KindPlasticBottle: "Plastic Bottle",
	KindPlasticBag:    "Plastic Bag",
	KindPaper:         "Paper",
	KindCardboard:     "Cardboard",
	KindMetal:         "Metal Scrap",
	KindGlass:         "Glass Bottle",
	KindFoodScraps:    "Food Scraps",
	KindTextiles:      "Textiles",
	KindYardWaste:     "Yard Waste",
	KindMedicalPPE:    "Non-infectious PPE",
}

// Kinds is the spawn catalog, in draw order.
var Kinds = []Kind{
	KindPlasticBottle,
	KindPlasticBag,
	KindPaper,
	KindCardboard,
	KindMetal,
	KindGlass,
	KindFoodScraps,
	KindTextiles,
	KindYardWaste,
	KindMedicalPPE,
}

// DisplayName returns the human-readable name, or the raw kind if unknown.
func (k Kind) DisplayName() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return string(k)
}

// Severity grades how dangerous a contaminant is.
type Severity string

const (
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Contaminant describes what makes an item unsafe to recycle as-is.
type Contaminant struct {
	Kind     string   `json:"kind" msgpack:"kind"`
	Name     string   `json:"name" msgpack:"name"`
	Severity Severity `json:"severity" msgpack:"severity"`
}

// Contaminants is the contaminant catalog, in draw order.
var Contaminants = []Contaminant{
	{Kind: "medical_gloves", Name: "Soiled Gloves", Severity: SeverityHigh},
	{Kind: "needles", Name: "Sharps/Needles", Severity: SeverityCritical},
	{Kind: "chemicals", Name: "Chemical Solvents", Severity: SeverityHigh},
	{Kind: "battery", Name: "Batteries", Severity: SeverityMedium},
	{Kind: "biohazard", Name: "Infectious Material", Severity: SeverityCritical},
	{Kind: "pharma", Name: "Expired Pharmaceuticals", Severity: SeverityHigh},
}
