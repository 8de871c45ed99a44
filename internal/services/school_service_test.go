package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/BradenHooton/superadmin-console/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSchools(n int) []models.School {
	out := make([]models.School, n)
	for i := range out {
		out[i] = models.School{
			ID:            fmt.Sprintf("s%02d", i+1),
			SchoolName:    fmt.Sprintf("School %02d", i+1),
			SchoolEmail:   fmt.Sprintf("office%02d@schools.test", i+1),
			ContactNumber: fmt.Sprintf("+1555%04d", i+1),
		}
	}
	return out
}

func TestSchoolService_List_Search(t *testing.T) {
	schools := []models.School{
		{ID: "1", SchoolName: "Green Valley High", SchoolEmail: "info@gv.edu", ContactNumber: "0123"},
		{ID: "2", SchoolName: "Riverside", SchoolEmail: "GREEN@river.edu", ContactNumber: "0456"},
		{ID: "3", SchoolName: "Hilltop", SchoolEmail: "hill@top.edu", ContactNumber: "0789"},
	}
	svc := NewSchoolService(&MockSchoolBackend{ListSchoolsFunc: func(ctx context.Context, token string) ([]models.School, error) {
		assert.Equal(t, "tok", token)
		return schools, nil
	}}, testAudit())

	tests := []struct {
		search string
		want   []string
	}{
		{"", []string{"1", "2", "3"}},
		{"green", []string{"1", "2"}},
		{"  HILL ", []string{"3"}},
		{"0456", []string{"2"}},
		{"nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			page, err := svc.List(context.Background(), "tok", models.SchoolQuery{Search: tt.search})
			require.NoError(t, err)

			ids := []string{}
			for _, s := range page.Items {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want), page.Total)
		})
	}
}

func TestPaginate(t *testing.T) {
	schools := sampleSchools(23)

	tests := []struct {
		name      string
		page      int
		size      int
		wantPage  int
		wantSize  int
		wantItems int
		wantFirst string
	}{
		{"defaults", 0, 0, 1, DefaultPageSize, 10, "s01"},
		{"second page", 2, 10, 2, 10, 10, "s11"},
		{"last partial page", 3, 10, 3, 10, 3, "s21"},
		{"past the end clamps", 9, 10, 3, 10, 3, "s21"},
		{"oversized page size", 1, 1000, 1, MaxPageSize, 23, "s01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(schools, tt.page, tt.size)

			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSize, p.PageSize)
			assert.Len(t, p.Items, tt.wantItems)
			assert.Equal(t, tt.wantFirst, p.Items[0].ID)
			assert.Equal(t, 23, p.Total)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate(nil, 4, 10)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.TotalPages)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
}

func TestSchoolService_List_BackendError(t *testing.T) {
	svc := NewSchoolService(&MockSchoolBackend{ListSchoolsFunc: func(ctx context.Context, token string) ([]models.School, error) {
		return nil, models.ErrUnauthorized
	}}, testAudit())

	_, err := svc.List(context.Background(), "tok", models.SchoolQuery{})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSchoolService_CreateRequiresLogo(t *testing.T) {
	called := false
	svc := NewSchoolService(&MockSchoolBackend{CreateSchoolFunc: func(ctx context.Context, token string, in models.SchoolInput) (string, error) {
		called = true
		return "", nil
	}}, testAudit())

	_, err := svc.Create(context.Background(), "tok", Actor{}, models.SchoolInput{SchoolName: "X"})

	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.False(t, called)
}

func TestSchoolService_MutationMessages(t *testing.T) {
	mb := &MockSchoolBackend{
		CreateSchoolFunc: func(ctx context.Context, token string, in models.SchoolInput) (string, error) {
			return "School created", nil
		},
		UpdateSchoolFunc: func(ctx context.Context, token, id string, in models.SchoolInput) (string, error) {
			assert.Equal(t, "s1", id)
			return "", nil
		},
		DeleteSchoolFunc: func(ctx context.Context, token, id string) (string, error) {
			return "", errors.New("upstream down")
		},
	}
	svc := NewSchoolService(mb, testAudit())
	ctx := context.Background()

	msg, err := svc.Create(ctx, "tok", Actor{}, models.SchoolInput{Logo: &models.FileUpload{Field: "schoolLogo"}})
	require.NoError(t, err)
	assert.Equal(t, "School created", msg)

	msg, err = svc.Update(ctx, "tok", Actor{}, "s1", models.SchoolInput{})
	require.NoError(t, err)
	assert.Equal(t, MessageSchoolUpdated, msg)

	msg, err = svc.ToggleStatus(ctx, "tok", Actor{}, "s1")
	require.NoError(t, err)
	assert.Equal(t, MessageSchoolStatus, msg)

	_, err = svc.Delete(ctx, "tok", Actor{}, "s1")
	assert.ErrorContains(t, err, "delete school s1")
}
