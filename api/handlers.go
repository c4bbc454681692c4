package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alwitt/reporter/db"
	"github.com/alwitt/reporter/models"
	"github.com/alwitt/reporter/store"
	"github.com/apex/log"
	"github.com/labstack/echo/v4"
)

// contextKeyUser echo context key of the authenticated user
const contextKeyUser = "reporter.user"

// login exchange a username and password for a bearer token
func (h *handler) login(c echo.Context) error {
	// Credentials are only taken from the request body, never the URL
	username := c.Request().PostFormValue("username")
	password := c.Request().PostFormValue("password")

	var missing []FieldError
	if username == "" {
		missing = append(missing, missingField("form", "username"))
	}
	if password == "" {
		missing = append(missing, missingField("form", "password"))
	}
	if len(missing) > 0 {
		return errValidation(missing...)
	}

	ctx := c.Request().Context()
	user, err := h.users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			h.metrics.logins.WithLabelValues(loginOutcomeRejected).Inc()
			return errBadCredentials(err)
		}
		h.metrics.logins.WithLabelValues(loginOutcomeError).Inc()
		return err
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		h.metrics.logins.WithLabelValues(loginOutcomeError).Inc()
		return err
	}
	h.metrics.logins.WithLabelValues(loginOutcomeSuccess).Inc()

	log.WithFields(h.GetLogTagsForContext(ctx)).
		WithField("username", user.Username).
		Info("User logged in")

	return c.JSON(http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
}

// requireBearer admit only requests carrying a valid bearer token of an existing user
func (h *handler) requireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
			return errInvalidToken(errors.New("missing bearer token"))
		}

		subject, err := h.tokens.Verify(token)
		if err != nil {
			return errInvalidToken(err)
		}

		user, err := h.users.FindByUsername(c.Request().Context(), subject)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return errInvalidToken(err)
			}
			return err
		}

		c.Set(contextKeyUser, user)
		return next(c)
	}
}

// submitResults store one result record
func (h *handler) submitResults(c echo.Context) error {
	user, ok := c.Get(contextKeyUser).(models.User)
	if !ok {
		return errInvalidToken(errors.New("no authenticated user in request context"))
	}

	record, details := decodeResultPayload(c.Request().Body, h.validate)
	if len(details) > 0 {
		return errValidation(details...)
	}

	if _, err := h.results.Insert(c.Request().Context(), record, user.Username, nil); err != nil {
		return err
	}
	h.metrics.submitted.Inc()

	return c.JSON(http.StatusOK, successEnvelope(msgResultEntered, nil))
}

// getResults list the results of one category and environment within a time window
func (h *handler) getResults(c echo.Context) error {
	params := c.QueryParams()

	var details []FieldError
	for _, name := range []string{"category", "from_date", "to_date", "environment"} {
		if !params.Has(name) {
			details = append(details, missingField("query", name))
		}
	}
	if len(details) > 0 {
		return errValidation(details...)
	}

	query := models.ResultRangeQuery{
		Category:    params.Get("category"),
		Environment: params.Get("environment"),
	}
	var err error
	if query.From, err = models.ParseISO8601(params.Get("from_date")); err != nil {
		details = append(details, invalidDatetime("query", "from_date"))
	}
	if query.To, err = models.ParseISO8601(params.Get("to_date")); err != nil {
		details = append(details, invalidDatetime("query", "to_date"))
	}
	if len(details) > 0 {
		return errValidation(details...)
	}

	results, err := h.results.QueryRange(c.Request().Context(), query)
	if err != nil {
		return err
	}

	views := make([]resultView, 0, len(results))
	for _, record := range results {
		views = append(views, newResultView(record))
	}
	return c.JSON(http.StatusOK, successEnvelope(msgResultsRetrieved, views))
}

// healthz report whether the DB is reachable
func (h *handler) healthz(c echo.Context) error {
	if err := h.persistence.Ping(c.Request().Context()); err != nil {
		return &apiError{status: http.StatusServiceUnavailable, msg: msgPersistenceDown, cause: err}
	}
	return c.JSON(http.StatusOK, successEnvelope(msgHealthy, nil))
}
