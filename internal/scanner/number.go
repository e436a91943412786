package scanner

import "strconv"

// ParseInt parses the value of an INT item.
func ParseInt(text string) (int64, error) {
	return strconv.ParseInt(text, 10, 64)
}

// ParseFloat parses the value of a FLOAT item.
func ParseFloat(text string) (float64, error) {
	return strconv.ParseFloat(text, 64)
}
