package models

import "strings"

// Contributor roles credited by the bibliographic source.
const (
	RoleAuthor      = "author"
	RoleEditor      = "editor"
	RoleTranslator  = "translator"
	RoleForeword    = "foreword"
	RoleContributor = "contributor"
	RoleIllustrator = "illustrator"
	RoleNarrator    = "narrator"
)

// roleKeywords maps free-text role annotations to roles, in match order.
// First keyword found in the annotation wins.
var roleKeywords = []struct {
	keyword string
	role    string
}{
	{"author", RoleAuthor},
	{"editor", RoleEditor},
	{"translator", RoleTranslator},
	{"foreword", RoleForeword},
	{"introduction", RoleForeword},
	{"contributor", RoleContributor},
	{"illustrator", RoleIllustrator},
	{"narrator", RoleNarrator},
}

// ClassifyRole maps a free-text annotation next to a contributor's name
// (for example "(Author)" or "(Translator, Introduction)") to a role.
// An empty or unrecognized annotation defaults to author.
func ClassifyRole(annotation string) string {
	annotation = strings.ToLower(annotation)
	for _, rk := range roleKeywords {
		if strings.Contains(annotation, rk.keyword) {
			return rk.role
		}
	}
	return RoleAuthor
}
