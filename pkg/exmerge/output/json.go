// Package output serializes comparison results.
package output

import (
	"encoding/json"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
)

// ToJSON serializes a workbook diff.
func ToJSON(wd *models.WorkbookDiff, pretty bool) ([]byte, error) {
	return marshal(wd, pretty)
}

// SheetToJSON serializes one sheet diff.
func SheetToJSON(sd *models.SheetDiff, pretty bool) ([]byte, error) {
	return marshal(sd, pretty)
}

// WriteSetToJSON serializes the physical operations planned for a sheet.
func WriteSetToJSON(ws *models.WriteSet, pretty bool) ([]byte, error) {
	return marshal(ws, pretty)
}

// WriteSetsToJSON serializes write sets keyed by sheet name.
func WriteSetsToJSON(sets map[string]models.WriteSet, pretty bool) ([]byte, error) {
	return marshal(sets, pretty)
}

func marshal(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
