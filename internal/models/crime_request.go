package models

// CrimeKey identifies one (area, crime type) combination, the unit the
// forecasting core operates on.
type CrimeKey struct {
	Barangay     string `json:"barangay" query:"barangay"`
	Municipality string `json:"municipality" query:"municipality"`
	Province     string `json:"province" query:"province"`
	Country      string `json:"country,omitempty" query:"country"`
	CrimeType    string `json:"crimeType" query:"crimeType"`
}

// CrimeRequest is the JSON payload for creating a single incident.
type CrimeRequest struct {
	CaseNumber      string `json:"case_number"`
	CrimeType       string `json:"crime_type"`
	Status          string `json:"status"`
	Gender          string `json:"gender"`
	Age             int    `json:"age"`
	CivilStatus     string `json:"civil_status"`
	ConfinementDate string `json:"confinement_date"`
	ConfinementTime string `json:"confinement_time"`
	Barangay        string `json:"barangay"`
	Municipality    string `json:"municipality"`
	Province        string `json:"province"`
	Country         string `json:"country"`
}
