package handler

import (
	"net/url"
	"strconv"
	"strings"

	"minetrack/internal/mine"
	"minetrack/internal/mine/service"
	dErrors "minetrack/pkg/domain-errors"
)

type createMineRequest struct {
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Coordinates mine.Coordinates `json:"coordinates"`
	Description string           `json:"description"`
}

func (r createMineRequest) toInput() mine.CreateInput {
	// Governance fields are not read from the request at all; a submission
	// cannot arrive pre-verified.
	return mine.CreateInput{
		Name:        r.Name,
		Type:        mine.Type(strings.ToLower(strings.TrimSpace(r.Type))),
		Coordinates: r.Coordinates,
		Description: r.Description,
	}
}

type updateMineRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
}

func (r updateMineRequest) toInput() (service.UpdateInput, error) {
	in := service.UpdateInput{
		Name:        r.Name,
		Description: r.Description,
	}
	if r.Type != nil {
		t, err := mine.ParseType(*r.Type)
		if err != nil {
			return service.UpdateInput{}, err
		}
		in.Type = &t
	}
	return in, nil
}

type setVerificationRequest struct {
	Verified *bool `json:"verified"`
}

type setLicenseRequest struct {
	License string `json:"license"`
}

// parseFilter translates list query parameters into a store filter. The
// literal "all" (the UI's default option) means the same as omitting the
// parameter.
func parseFilter(q url.Values) (mine.Filter, error) {
	f := mine.Filter{Search: strings.TrimSpace(q.Get("search"))}

	if v := q.Get("type"); v != "" && v != "all" {
		t, err := mine.ParseType(v)
		if err != nil {
			return mine.Filter{}, err
		}
		f.Type = &t
	}
	if v := q.Get("license"); v != "" && v != "all" {
		l, err := mine.ParseLicense(v)
		if err != nil {
			return mine.Filter{}, err
		}
		f.License = &l
	}
	if v := q.Get("verified"); v != "" && v != "all" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return mine.Filter{}, dErrors.New(dErrors.CodeValidation, "verified must be a boolean or \"all\"")
		}
		f.Verified = &b
	}
	return f, nil
}
