package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProfileHandler_get(t *testing.T) {
	s := newTestServer(t, nil)
	name := "Anna"
	s.profiles.On("Get", mock.Anything, testUserID).Return(&domain.Profile{ID: testUserID, FullName: &name}, nil)

	w := s.do(http.MethodGet, "/api/v1/profile", nil, testToken)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"full_name":"Anna"`)
}

func TestProfileHandler_update(t *testing.T) {
	s := newTestServer(t, nil)
	phone := "+375291234567"
	birth := time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)
	s.profiles.On("Update", mock.Anything, testUserID, domain.ProfileUpdate{PhoneNumber: &phone, BirthDate: &birth}).
		Return(&domain.Profile{ID: testUserID, PhoneNumber: &phone, BirthDate: &birth}, nil)

	day := "1990-03-14"
	w := s.do(http.MethodPut, "/api/v1/profile", updateProfileRequest{PhoneNumber: &phone, BirthDate: &day}, testToken)

	require.Equal(t, http.StatusOK, w.Code)
	s.profiles.AssertExpectations(t)
}

func TestProfileHandler_updateRejectsBadDate(t *testing.T) {
	s := newTestServer(t, nil)

	bad := "yesterday"
	w := s.do(http.MethodPut, "/api/v1/profile", updateProfileRequest{BirthDate: &bad}, testToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	empty := ""
	w = s.do(http.MethodPut, "/api/v1/profile", updateProfileRequest{BirthDate: &empty}, testToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	s.profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
