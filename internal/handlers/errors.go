package handlers

import "fmt"

func errBadField(field string) error {
	return fmt.Errorf("invalid value for field %q", field)
}
