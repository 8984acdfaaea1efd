package model

// Compact role codes used by the simulated toolkit's widgets.
const (
	RoleButton = "btn"
	RoleText   = "txt"
	RoleInput  = "input"
	RoleGroup  = "group"
	RoleScroll = "scroll"
	RoleCheck  = "chk"
	RoleLink   = "lnk"
	RoleOther  = "other"
)

// RoleMap maps widget type names, as used in selectors and scenario
// files, to compact role codes.
var RoleMap = map[string]string{
	"Button":       "btn",
	"Label":        "txt",
	"Text":         "txt",
	"Hyperlink":    "lnk",
	"ImageView":    "img",
	"TextField":    "input",
	"TextArea":     "input",
	"CheckBox":     "chk",
	"ToggleButton": "toggle",
	"RadioButton":  "radio",
	"Menu":         "menu",
	"MenuBar":      "menu",
	"MenuItem":     "menuitem",
	"TabPane":      "tab",
	"ListView":     "list",
	"TableView":    "list",
	"TableRow":     "row",
	"TableCell":    "cell",
	"Pane":         "group",
	"VBox":         "group",
	"HBox":         "group",
	"SplitPane":    "group",
	"ScrollPane":   "scroll",
	"ToolBar":      "toolbar",
	"Window":       "window",
}

// MetaRoles maps meta-role names to the concrete roles they expand to.
// "interactive" matches roles that accept pointer or keyboard input.
var MetaRoles = map[string][]string{
	"interactive": {"btn", "input", "chk", "toggle", "radio", "lnk", "list", "scroll"},
}

// ExpandRoles expands any meta-roles in the given list to their concrete roles.
// Non-meta roles are passed through unchanged. Duplicates are removed.
func ExpandRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	var expanded []string
	for _, r := range roles {
		if concrete, ok := MetaRoles[r]; ok {
			for _, c := range concrete {
				if !seen[c] {
					seen[c] = true
					expanded = append(expanded, c)
				}
			}
		} else if !seen[r] {
			seen[r] = true
			expanded = append(expanded, r)
		}
	}
	return expanded
}

// MapRole converts a widget type name to a compact code. Names that are
// already compact codes are returned unchanged; anything else maps to
// "other".
func MapRole(name string) string {
	if short, ok := RoleMap[name]; ok {
		return short
	}
	for _, short := range RoleMap {
		if short == name {
			return short
		}
	}
	return RoleOther
}

// IsFocusable reports whether nodes with the given role take keyboard focus
// when pressed.
func IsFocusable(role string) bool {
	switch role {
	case "btn", "input", "chk", "toggle", "radio", "list", "lnk":
		return true
	}
	return false
}
