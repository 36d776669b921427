package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/naveenspark/fitline/pkg/domain"
)

// GetMe returns the signed-in member's profile.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/user/", &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// GetUserStats returns the dashboard summary.
func (c *Client) GetUserStats(ctx context.Context) (*domain.UserStats, error) {
	var s domain.UserStats
	if err := c.get(ctx, "/user/stats/", &s); err != nil {
		return nil, fmt.Errorf("client.GetUserStats: %w", err)
	}
	return &s, nil
}

// AccountStatus asks the server whether the member holds the premium
// entitlement. The answer is authoritative.
func (c *Client) AccountStatus(ctx context.Context) (*domain.AccountStatus, error) {
	var s domain.AccountStatus
	if err := c.get(ctx, "/account/status/", &s); err != nil {
		return nil, fmt.Errorf("client.AccountStatus: %w", err)
	}
	return &s, nil
}

// PaymentStatus is the server's view of a checkout session.
type PaymentStatus struct {
	Status    string `json:"status"`
	IsPremium bool   `json:"is_premium"`
}

// CheckPaymentStatus asks the server to reconcile a completed checkout.
func (c *Client) CheckPaymentStatus(ctx context.Context, sessionID string) (*PaymentStatus, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("client.CheckPaymentStatus: %w: session id is required", ErrValidation)
	}
	params := url.Values{}
	params.Set("session_id", sessionID)
	var s PaymentStatus
	if err := c.get(ctx, "/api/payments/check-payment-status/?"+params.Encode(), &s); err != nil {
		return nil, fmt.Errorf("client.CheckPaymentStatus: %w", err)
	}
	return &s, nil
}

// CheckoutSession is a hosted payment page for the premium membership.
type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id,omitempty"`
}

// CheckoutRequest optionally overrides where the hosted page sends the
// browser afterwards. Empty fields keep the server's defaults.
type CheckoutRequest struct {
	SuccessURL string `json:"success_url,omitempty"`
	CancelURL  string `json:"cancel_url,omitempty"`
}

// CreateCheckoutSession starts a membership purchase. SessionID is taken
// from the response, or from the checkout URL when the server omits it.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	var s CheckoutSession
	if err := c.post(ctx, "/api/payments/create-checkout-session/", req, &s); err != nil {
		return nil, fmt.Errorf("client.CreateCheckoutSession: %w", err)
	}
	if s.URL == "" {
		return nil, fmt.Errorf("client.CreateCheckoutSession: server returned no checkout url")
	}
	if s.SessionID == "" {
		s.SessionID = SessionIDFromURL(s.URL)
	}
	return &s, nil
}

// SessionIDFromURL extracts a checkout session id ("cs_...") from a hosted
// checkout URL or a success redirect. It returns "" when there is none.
func SessionIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if id := u.Query().Get("session_id"); id != "" {
		return id
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if strings.HasPrefix(seg, "cs_") {
			return seg
		}
	}
	return ""
}

// ExerciseFilter narrows a catalog listing. Empty fields are ignored.
type ExerciseFilter struct {
	BodyPart  string
	Target    string
	Equipment string
}

// ListExercises returns the exercise catalog.
func (c *Client) ListExercises(ctx context.Context, f ExerciseFilter) ([]domain.Exercise, error) {
	params := url.Values{}
	if f.BodyPart != "" {
		params.Set("body_part", f.BodyPart)
	}
	if f.Target != "" {
		params.Set("target", f.Target)
	}
	if f.Equipment != "" {
		params.Set("equipment", f.Equipment)
	}
	path := "/exercises/"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var exercises []domain.Exercise
	if err := c.get(ctx, path, &exercises); err != nil {
		return nil, fmt.Errorf("client.ListExercises: %w", err)
	}
	return exercises, nil
}

// ListWorkoutLogs returns the member's logged workouts.
func (c *Client) ListWorkoutLogs(ctx context.Context) ([]domain.WorkoutLog, error) {
	var logs []domain.WorkoutLog
	if err := c.get(ctx, "/workouts/logs/", &logs); err != nil {
		return nil, fmt.Errorf("client.ListWorkoutLogs: %w", err)
	}
	return logs, nil
}

// CreateWorkoutLog records one exercise.
func (c *Client) CreateWorkoutLog(ctx context.Context, l domain.WorkoutLog) (*domain.WorkoutLog, error) {
	if strings.TrimSpace(l.Exercise) == "" || l.Sets <= 0 || l.Reps <= 0 {
		return nil, fmt.Errorf("client.CreateWorkoutLog: %w: exercise, sets and reps are required", ErrValidation)
	}
	var out domain.WorkoutLog
	if err := c.post(ctx, "/workouts/logs/", l, &out); err != nil {
		return nil, fmt.Errorf("client.CreateWorkoutLog: %w", err)
	}
	return &out, nil
}

// CompleteRoutine marks a plan day as done, which feeds the activity feed.
func (c *Client) CompleteRoutine(ctx context.Context, routineID int) error {
	body := map[string]int{"routine_id": routineID}
	if err := c.post(ctx, "/workouts/completed/", body, nil); err != nil {
		return fmt.Errorf("client.CompleteRoutine: %w", err)
	}
	return nil
}

// remotePlan is the server's plan shape; reps arrive as ranges like "8-12".
type remotePlan struct {
	Name      string    `json:"name"`
	Goal      string    `json:"goal"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"created_at"`
	Routines  []struct {
		Day       string `json:"day"`
		Exercises []struct {
			ID     json.Number     `json:"id"`
			Name   string          `json:"name"`
			Sets   int             `json:"sets"`
			Reps   json.RawMessage `json:"reps"`
			Weight *float64        `json:"weight"`
			Notes  string          `json:"notes"`
		} `json:"exercises"`
	} `json:"routines"`
}

// GetCurrentPlan returns the member's latest server-side plan, or nil when
// they have none.
func (c *Client) GetCurrentPlan(ctx context.Context) (*domain.WorkoutPlan, error) {
	var rp remotePlan
	if err := c.get(ctx, "/workout-plans/current/", &rp); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("client.GetCurrentPlan: %w", err)
	}

	plan := &domain.WorkoutPlan{
		Name:      rp.Name,
		Goal:      domain.Goal(rp.Goal),
		Level:     domain.Level(rp.Level),
		CreatedAt: rp.CreatedAt,
	}
	for _, r := range rp.Routines {
		routine := domain.Routine{Day: r.Day}
		for _, e := range r.Exercises {
			pe := domain.PlannedExercise{
				ID:    e.ID.String(),
				Name:  e.Name,
				Sets:  e.Sets,
				Reps:  leadingInt(e.Reps),
				Notes: e.Notes,
			}
			if e.Weight != nil {
				pe.Weight = *e.Weight
			}
			routine.Exercises = append(routine.Exercises, pe)
		}
		plan.Routines = append(plan.Routines, routine)
	}
	return plan, nil
}

// leadingInt reads 12, "12" or "12-15" as 12.
func leadingInt(raw json.RawMessage) int {
	var n int
	if json.Unmarshal(raw, &n) == nil {
		return n
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return 0
	}
	s, _, _ = strings.Cut(strings.TrimSpace(s), "-")
	n, _ = strconv.Atoi(strings.TrimSpace(s))
	return n
}

// GetActivityFeed returns recent activity from followed members.
func (c *Client) GetActivityFeed(ctx context.Context) ([]domain.Activity, error) {
	var feed []domain.Activity
	if err := c.get(ctx, "/social/activity/", &feed); err != nil {
		return nil, fmt.Errorf("client.GetActivityFeed: %w", err)
	}
	return feed, nil
}

// GetLeaderboard returns members ranked by completed workouts.
func (c *Client) GetLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	var entries []domain.LeaderboardEntry
	if err := c.get(ctx, "/social/leaderboard/", &entries); err != nil {
		return nil, fmt.Errorf("client.GetLeaderboard: %w", err)
	}
	for i := range entries {
		if entries[i].Rank == 0 {
			entries[i].Rank = i + 1
		}
	}
	return entries, nil
}

// AskCoach sends one message to the premium coach. The call is bounded by
// the chat timeout regardless of ctx.
func (c *Client) AskCoach(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("client.AskCoach: %w: message is empty", ErrValidation)
	}
	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()

	var reply domain.ChatReply
	if err := c.post(ctx, "/api/ai-chat/", map[string]string{"message": message}, &reply); err != nil {
		return "", fmt.Errorf("client.AskCoach: %w", err)
	}
	return reply.Response, nil
}
