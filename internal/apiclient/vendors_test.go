package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesAcceptStringOrList(t *testing.T) {
	var v struct {
		A Categories `json:"a"`
		B Categories `json:"b"`
		C Categories `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a":["Warli House","Bamboo Trophy"],"b":"Sanchi Stupa","c":null}`), &v)
	require.NoError(t, err)

	assert.Equal(t, Categories{"Warli House", "Bamboo Trophy"}, v.A)
	assert.Equal(t, Categories{"Sanchi Stupa"}, v.B)
	assert.Nil(t, v.C)
}

func TestVendorsList(t *testing.T) {
	body := `[{"_id":"v1","name":"Acme","email":"a@x.com","category":["Warli House"],"isActive":true,"createdAt":"2024-05-01T10:00:00Z"}]`
	fb, srv := newFakeBackend(t, http.StatusOK, body)
	c, err := New(srv.URL)
	require.NoError(t, err)

	vendors, err := c.Vendors.List(context.Background())
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "v1", vendors[0].ID)
	assert.True(t, vendors[0].IsActive)
	assert.Equal(t, 2024, vendors[0].CreatedAt.Year())
	assert.Equal(t, "/api/vendor/admin/all", fb.last(t).Path)
}

func TestVendorsListWrapped(t *testing.T) {
	body := `{"success":true,"vendors":[{"_id":"v1","name":"Acme","email":"a@x.com","category":"Warli House"},{"_id":"v2","name":"Bolt","email":"b@x.com"}]}`
	_, srv := newFakeBackend(t, http.StatusOK, body)
	c, err := New(srv.URL)
	require.NoError(t, err)

	vendors, err := c.Vendors.List(context.Background())
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, Categories{"Warli House"}, vendors[0].Category)
	assert.Equal(t, "v2", vendors[1].ID)
}

func TestVendorsCreateConflictIsDuplicateOnlyWithMessage(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		duplicate bool
	}{
		{"duplicate", `{"error":"Vendor already exists"}`, true},
		{"quota", `{"error":"Vendor category quota reached"}`, false},
		{"no body", ``, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, srv := newFakeBackend(t, http.StatusConflict, tc.body)
			c, err := New(srv.URL)
			require.NoError(t, err)

			_, err = c.Vendors.Create(context.Background(), NewVendor{Name: "Acme", Email: "a@x.com", Password: "pw"})
			require.Error(t, err)
			assert.True(t, IsConflict(err))
			assert.Equal(t, tc.duplicate, IsDuplicate(err))
		})
	}
}
