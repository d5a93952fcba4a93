package model

// Competition is a dated event with a limited number of places.
//
// Fields:
//  Name           – primary identifier, matched case-insensitively.
//  Date           – start time as "YYYY-MM-DD HH:MM:SS"; kept verbatim so a
//                   malformed value survives a rewrite of the file.
//  NumberOfPlaces – places still available; never negative.
type Competition struct {
	Name           string `json:"name"`
	Date           string `json:"date"`
	NumberOfPlaces Count  `json:"numberOfPlaces"`
}
