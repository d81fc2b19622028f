package tcx

import (
	"encoding/xml"
)

const (
	DefaultNamespace          = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"
	DefaultExtensionNamespace = "http://www.garmin.com/xmlschemas/ActivityExtension/v2"
	DefaultSport              = "Biking"

	// TimeLayout renders instants the way Garmin Connect and Strava expect.
	// Sub-second offsets keep up to millisecond precision; whole seconds
	// carry no fraction.
	TimeLayout = "2006-01-02T15:04:05.999Z"
)

// Namespaces are the XML namespace URIs written on the document root.
// Extension elements are emitted with the "ax" prefix.
type Namespaces struct {
	Core      string
	Extension string
}

func DefaultNamespaces() Namespaces {
	return Namespaces{
		Core:      DefaultNamespace,
		Extension: DefaultExtensionNamespace,
	}
}

// TrainingCenterDatabase is the TCX document root
type TrainingCenterDatabase struct {
	XMLName    xml.Name   `xml:"TrainingCenterDatabase"`
	XMLNS      string     `xml:"xmlns,attr"`
	XMLNSAX    string     `xml:"xmlns:ax,attr,omitempty"`
	Activities Activities `xml:"Activities"`
}

type Activities struct {
	Activity []Activity `xml:"Activity"`
}

type Activity struct {
	Sport string `xml:"Sport,attr"`
	ID    string `xml:"Id"`
	Laps  []Lap  `xml:"Lap"`
}

// Lap carries the schema-mandated totals ahead of its track
type Lap struct {
	StartTime        string  `xml:"StartTime,attr"`
	TotalTimeSeconds float64 `xml:"TotalTimeSeconds"`
	DistanceMeters   float64 `xml:"DistanceMeters"`
	Calories         int     `xml:"Calories"`
	Intensity        string  `xml:"Intensity"`
	TriggerMethod    string  `xml:"TriggerMethod"`
	Track            Track   `xml:"Track"`
}

type Track struct {
	Trackpoints []Trackpoint `xml:"Trackpoint"`
}

type Trackpoint struct {
	Time           string     `xml:"Time"`
	DistanceMeters float64    `xml:"DistanceMeters"`
	Cadence        int        `xml:"Cadence"`
	Extensions     Extensions `xml:"Extensions"`
}

type Extensions struct {
	TPX TPX `xml:"ax:TPX"`
}

// TPX is the ActivityExtension trackpoint block. Speed is in m/s.
type TPX struct {
	Speed float64 `xml:"ax:Speed"`
	Watts int     `xml:"ax:Watts"`
}
