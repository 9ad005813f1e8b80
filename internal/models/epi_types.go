package models

import (
	"time"
)

// EPI section names. One row per (supplier, section) in
// supplier_epi_sections; each section saves independently so partial
// completion survives across sessions.
const (
	EpiSectionGeneral        = "general"
	EpiSectionOperations     = "operations"
	EpiSectionBankingSystems = "banking_systems"
	EpiSectionQuestionnaire  = "questionnaire"
	EpiSectionChecklist      = "checklist"
)

// EpiSectionNames lists all five sections in wizard order.
var EpiSectionNames = []string{
	EpiSectionGeneral,
	EpiSectionOperations,
	EpiSectionBankingSystems,
	EpiSectionQuestionnaire,
	EpiSectionChecklist,
}

// EpiGeneral holds the supplier's identity and contact data.
type EpiGeneral struct {
	LegalName     string `json:"legalName"`
	TradeName     string `json:"tradeName"`
	TaxID         string `json:"taxId"`
	BusinessType  string `json:"businessType"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Country       string `json:"country"`
	ContactPerson string `json:"contactPerson"`
	ContactEmail  string `json:"contactEmail"`
	ContactPhone  string `json:"contactPhone"`
	Website       string `json:"website"`
	YearFounded   int    `json:"yearFounded"`
}

// EpiOperations covers production capacity and logistics.
type EpiOperations struct {
	EmployeeCount      int      `json:"employeeCount"`
	ProductionCapacity string   `json:"productionCapacity"`
	LeadTimeDays       int      `json:"leadTimeDays"`
	CoverageRegions    []string `json:"coverageRegions"`
	MainProducts       []string `json:"mainProducts"`
	Certifications     []string `json:"certifications"`
	ExportExperience   bool     `json:"exportExperience"`
}

// EpiBankingSystems combines bank data with the supplier's ERP/quality
// systems (one wizard screen in the app, so one section here).
type EpiBankingSystems struct {
	BankName          string `json:"bankName"`
	AccountNumber     string `json:"accountNumber"`
	AccountHolder     string `json:"accountHolder"`
	Currency          string `json:"currency"`
	PaymentTerms      string `json:"paymentTerms"`
	ERPSystem         string `json:"erpSystem"`
	QualitySystem     string `json:"qualitySystem"`
	HasDigitalInvoice bool   `json:"hasDigitalInvoice"`
}

// EpiQuestionnaireAnswer is one answered question in the fixed
// qualification questionnaire.
type EpiQuestionnaireAnswer struct {
	QuestionID string `json:"questionId"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Score      int    `json:"score"`
}

// EpiQuestionnaire wraps the answer list so the section stays an object
// on the wire like the other four.
type EpiQuestionnaire struct {
	Answers []EpiQuestionnaireAnswer `json:"answers"`
}

// EpiChecklistItem is one required document in the evidence checklist.
// FileURL may be a legacy storage path ("supplier_evidence/...") on old
// rows; it is resolved to an absolute URL at read time, never rewritten.
type EpiChecklistItem struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Checked  bool   `json:"checked"`
	FileURL  string `json:"fileUrl,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// EpiChecklist wraps the checklist items.
type EpiChecklist struct {
	Items []EpiChecklistItem `json:"items"`
}

// EpiProfile is the merged five-section view returned to the wizard and
// the manager audit screen. Missing sections come back zero-valued, never
// null, so clients never have to null-check.
type EpiProfile struct {
	SupplierID     int64             `json:"supplierId"`
	General        EpiGeneral        `json:"general"`
	Operations     EpiOperations     `json:"operations"`
	BankingSystems EpiBankingSystems `json:"bankingSystems"`
	Questionnaire  EpiQuestionnaire  `json:"questionnaire"`
	Checklist      EpiChecklist      `json:"checklist"`

	// Derived from which section rows exist, never stored as a flag.
	SavedSections []string   `json:"savedSections"`
	Progress      int        `json:"progress"` // saved sections out of 5
	IsComplete    bool       `json:"isComplete"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}
