package api

import (
	"fmt"

	"github.com/starford/rolodex/internal/contactservice"
	"github.com/starford/rolodex/internal/models"
)

// CreateContactRequest is the request body for creating a contact.
type CreateContactRequest = contactservice.ContactInput

// ContactListResponse wraps the sorted contact listing.
type ContactListResponse struct {
	Contacts []models.Contact `json:"contacts"`
	Total    int              `json:"total"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.Contact `json:"results"`
}

var fieldNames = map[string]struct{}{
	"name": {}, "phone": {}, "email": {}, "address": {}, "notes": {},
}

// changesFromBody turns a PATCH body into Changes. Keys that are present
// are applied, "" clears, unknown keys are ignored.
func changesFromBody(body map[string]any) (models.Changes, error) {
	fields := make(map[string]string, len(body))
	for k, v := range body {
		if _, ok := fieldNames[k]; !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return models.Changes{}, fmt.Errorf("%s must be a string", k)
		}
		fields[k] = s
	}
	return models.ChangesFromMap(fields), nil
}
