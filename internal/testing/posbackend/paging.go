package posbackend

import (
	"net/http"
	"sort"
	"strconv"
)

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// paginate returns the rows of page and the next page number, 0 when none.
func paginate[T any](rows []T, page int) ([]T, int) {
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return nil, 0
	}
	end := start + pageSize
	next := page + 1
	if end >= len(rows) {
		end = len(rows)
		next = 0
	}
	return rows[start:end], next
}

func sortUsers(users []User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
}
