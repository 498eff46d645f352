package tagutil

import "strings"

// JSONTag captures the attributes of a `json` struct tag.
type JSONTag struct {
	Name      string
	OmitEmpty bool
	Explicit  bool
	Transient bool
	String    bool
}

func ParseJSONTag(defaultName string, raw string) JSONTag {
	if raw == "" {
		return JSONTag{Name: defaultName}
	}
	parts := strings.Split(raw, ",")
	if parts[0] == "-" && len(parts) == 1 {
		return JSONTag{Name: defaultName, Transient: true}
	}
	tag := JSONTag{Name: parts[0], Explicit: parts[0] != ""}
	if tag.Name == "" {
		tag.Name = defaultName
	}
	for _, p := range parts[1:] {
		switch p {
		case "omitempty":
			tag.OmitEmpty = true
		case "string":
			tag.String = true
		}
	}
	return tag
}
