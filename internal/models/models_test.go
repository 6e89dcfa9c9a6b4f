package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArticle_SetsIdentityAndTimestamps(t *testing.T) {
	a := NewArticle()

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.False(t, a.PublishedAt.IsZero())
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
}

func TestArticle_SameCategory(t *testing.T) {
	tech := uuid.New()
	a := &Article{CategoryID: tech}
	b := &Article{CategoryID: tech}
	c := &Article{CategoryID: uuid.New()}

	assert.True(t, a.SameCategory(b))
	assert.False(t, a.SameCategory(c))
}

func TestArticle_Link(t *testing.T) {
	var missing *Article
	assert.Nil(t, missing.Link())

	a := NewArticle()
	a.Name = "Hello"
	a.URL = "/2021/01/hello"

	link := a.Link()
	require.NotNil(t, link)
	assert.Equal(t, a.ID, link.ID)
	assert.Equal(t, "Hello", link.Name)
	assert.Equal(t, "/2021/01/hello", link.URL)
	assert.Equal(t, a.PublishedAt, link.PublishedAt)
}

func TestCategory_IsRoot(t *testing.T) {
	root := NewCategory("tech")
	child := NewCategory("go")
	child.ParentID = &root.ID

	assert.True(t, root.IsRoot())
	assert.False(t, child.IsRoot())
}
