package models

// RawLocation is a site record as the backend returns it. Like products,
// locations suffer from alias drift across backend schema versions.
type RawLocation struct {
	ID           *int64     `json:"id"`
	LocaCode     FlexString `json:"loca_code"`
	Code         FlexString `json:"code"`
	LocaName     FlexString `json:"loca_name"`
	Name         FlexString `json:"name"`
	LocationName FlexString `json:"location_name"`
}

// Location is the normalized site shape shown to the operator. Code is what
// gets sent back on login.
type Location struct {
	Code string
	Name string
}
