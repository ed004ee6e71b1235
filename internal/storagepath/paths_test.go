package storagepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	assert.Equal(t, "logos/acme.png", Logo("acme.png"))
	assert.Equal(t, "temporary-docs/upload-1", TemporaryDoc("upload-1"))
	assert.Equal(t, "companies/c1/dashboards/d1/new-samples/s.pdf", NewSample("c1", "d1", "s.pdf"))
	assert.Equal(t, "companies/c1/dashboards/d1/samples/s.pdf", Sample("c1", "d1", "s.pdf"))
	assert.Equal(t, "companies/c1/dashboards/d1/originals/a1/p1.jpeg", Original("c1", "d1", "a1", "p1.jpeg"))
	assert.Equal(t, "companies/c1/dashboards/d1/fixed/a1/p1.pdf", Fixed("c1", "d1", "a1", "p1.pdf"))
	assert.Equal(t, "companies/c1/dashboards/d1/accepted/a1/doc.pdf", Accepted("c1", "d1", "a1", "doc.pdf"))
	assert.Equal(t, "companies/c1/dashboards/d1/rejected/a1/doc.pdf", Rejected("c1", "d1", "a1", "doc.pdf"))
	assert.Equal(t, "companies/c1/dashboards/d1/final/a1/doc.pdf", Final("c1", "d1", "a1", "doc.pdf"))
	assert.Equal(t, "companies/c1/dashboards/d1/replaced/a1/doc.pdf", Replaced("c1", "d1", "a1", "doc.pdf"))
}

// Same inputs always produce the same path; the mapping carries no state.
func TestPathsAreDeterministic(t *testing.T) {
	assert.Equal(t, Final("c", "d", "a", "f"), Final("c", "d", "a", "f"))
}
