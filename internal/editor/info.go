package editor

import (
	"github.com/studiowebux/oasedit/internal/document"
	"github.com/studiowebux/oasedit/internal/store"
)

// InfoPatch lists the info fields to change. Nil fields are left untouched.
type InfoPatch struct {
	Title          *string
	Version        *string
	Summary        *string
	Description    *string
	TermsOfService *string
	ContactName    *string
	ContactEmail   *string
	ContactURL     *string
	LicenseName    *string
	LicenseURL     *string
}

// InfoEditor edits document metadata
type InfoEditor struct {
	store *store.Store
}

func NewInfoEditor(s *store.Store) *InfoEditor {
	return &InfoEditor{store: s}
}

// Info returns the current info section; a missing section reads as empty
func (e *InfoEditor) Info() (document.Info, error) {
	doc, err := current(e.store)
	if err != nil {
		return document.Info{}, err
	}
	if doc.Info == nil {
		return document.Info{}, nil
	}
	return *doc.Info, nil
}

// UpdateInfo applies p. Clearing the title or version is rejected by the store.
func (e *InfoEditor) UpdateInfo(p InfoPatch) error {
	return e.store.Update(func(doc *document.Document) error {
		if doc.Info == nil {
			doc.Info = &document.Info{}
		}
		info := doc.Info
		set(&info.Title, p.Title)
		set(&info.Version, p.Version)
		set(&info.Summary, p.Summary)
		set(&info.Description, p.Description)
		set(&info.TermsOfService, p.TermsOfService)

		if p.ContactName != nil || p.ContactEmail != nil || p.ContactURL != nil {
			if info.Contact == nil {
				info.Contact = &document.Contact{}
			}
			set(&info.Contact.Name, p.ContactName)
			set(&info.Contact.Email, p.ContactEmail)
			set(&info.Contact.URL, p.ContactURL)
			if c := info.Contact; c.Name == "" && c.Email == "" && c.URL == "" && len(c.Extensions) == 0 {
				info.Contact = nil
			}
		}

		if p.LicenseName != nil || p.LicenseURL != nil {
			if info.License == nil {
				info.License = &document.License{}
			}
			set(&info.License.Name, p.LicenseName)
			set(&info.License.URL, p.LicenseURL)
			if info.License.Name == "" && info.License.URL == "" && info.License.Identifier == "" {
				info.License = nil
			}
		}
		return nil
	})
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
