package template

import (
	"fmt"
	"strings"
)

// Issue is one static configuration defect, attributed to a table so a
// caller can disable the affected table without abandoning the rest of the
// project.
type Issue struct {
	TableID string
	Message string
}

func (i Issue) String() string {
	if i.TableID == "" {
		return i.Message
	}
	return fmt.Sprintf("table %s: %s", i.TableID, i.Message)
}

// CheckError collects every defect found by Check.
type CheckError struct {
	Issues []Issue
}

func (e *CheckError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("configuration check failed: %s", strings.Join(msgs, "; "))
}

// ForTable returns the defects attributed to one table.
func (e *CheckError) ForTable(tableID string) []Issue {
	var out []Issue
	for _, issue := range e.Issues {
		if issue.TableID == tableID {
			out = append(out, issue)
		}
	}
	return out
}
