package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// authedApp builds a fiber app whose requests carry the JWT locals the
// protected handlers read.
func authedApp(userID uuid.UUID, role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{
			Claims: jwt.MapClaims{"user_id": userID.String(), "role": role},
			Valid:  true,
		})
		return c.Next()
	})
	return app
}

func TestGetConversationMarksReadBeforeLoading(t *testing.T) {
	mock := setupMockDB(t)
	userID := uuid.New()
	otherID := uuid.New()

	// Expectations are ordered: the bulk read-mark must hit before the
	// messages are loaded, so the response reflects the updated statuses.
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "is_active"}).
			AddRow(otherID.String(), "Maya", "Lin", "maya@example.com", true))
	mock.ExpectExec(`UPDATE "messages"`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`SELECT \* FROM "messages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	app := authedApp(userID, "student")
	app.Get("/conversation/:userId", GetConversation)

	req := httptest.NewRequest("GET", "/conversation/"+otherID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}
