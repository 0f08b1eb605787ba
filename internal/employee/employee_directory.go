package employee

import (
	"sort"
	"strings"
)

const defaultDirectoryPageSize = 50

// filterDirectory applies q to the full directory and returns the requested
// page plus the number of matches before paging.
func filterDirectory(all []EmployeeResponse, q DirectoryQuery) ([]EmployeeResponse, int64) {
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	department := strings.TrimSpace(q.Department)
	roles := splitRoles(q.Role)

	out := make([]EmployeeResponse, 0, len(all))
	for _, e := range all {
		if department != "" && !strings.EqualFold(e.Department, department) {
			continue
		}
		if len(roles) > 0 {
			if _, ok := roles[e.Role]; !ok {
				continue
			}
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.FullName), needle) &&
			!strings.Contains(strings.ToLower(e.Email), needle) {
			continue
		}
		out = append(out, e)
	}

	key := func(e EmployeeResponse) string {
		switch q.SortBy {
		case "email":
			return strings.ToLower(e.Email)
		case "department":
			return strings.ToLower(e.Department)
		default:
			return strings.ToLower(e.FullName)
		}
	}
	desc := q.SortDir == "desc"
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return key(out[i]) > key(out[j])
		}
		return key(out[i]) < key(out[j])
	})

	total := int64(len(out))
	start := (q.Page - 1) * q.PageSize
	if start > len(out) {
		start = len(out)
	}
	end := start + q.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total
}

func splitRoles(raw string) map[string]struct{} {
	roles := make(map[string]struct{})
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(strings.ToLower(r)); r != "" {
			roles[r] = struct{}{}
		}
	}
	return roles
}
