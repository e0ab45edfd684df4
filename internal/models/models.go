package models

import "encoding/json"

const (
	// NotAvailable stands in for a top-level field that could not be read.
	NotAvailable = "Na"
	// MissingDetail stands in for an otherDetails value that could not be read.
	MissingDetail = "N/A"
)

// TorrentResult represents a single normalized torrent listing
type TorrentResult struct {
	Name         string            `json:"name"`
	Magnet       string            `json:"magnet"`
	Seeders      string            `json:"Seeders"`
	Leechers     string            `json:"Leechers"`
	Size         string            `json:"Size"`
	Date         string            `json:"Date"`
	Images       Images            `json:"Images"`
	OtherDetails map[string]string `json:"otherDetails"`
}

// Images is an ordered list of image URLs. An empty list is written as the
// "Na" sentinel so "no images" and "not attempted" look the same on the wire.
type Images []string

// IsSentinel reports whether the list serializes as the "Na" sentinel.
func (i Images) IsSentinel() bool {
	return len(i) == 0
}

func (i Images) MarshalJSON() ([]byte, error) {
	if i.IsSentinel() {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal([]string(i))
}

func (i *Images) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*i = list
	return nil
}

// ErrorEnvelope is returned in place of results when a whole search fails
type ErrorEnvelope struct {
	Message string `json:"Message"`
}

// DetailKeys returns a map holding every key set to MissingDetail.
func DetailKeys(keys ...string) map[string]string {
	details := make(map[string]string, len(keys))
	for _, k := range keys {
		details[k] = MissingDetail
	}
	return details
}
