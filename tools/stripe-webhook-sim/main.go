package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79/webhook"
)

func main() {
	var (
		baseURL = flag.String("base-url", getenv("BASE_URL", "http://localhost:8084"), "schedule-service base url")
		evtType = flag.String("type", getenv("STRIPE_EVENT_TYPE", "checkout.session.completed"), "stripe event type")
		tutor   = flag.String("tutor-id", getenv("TUTOR_ID", ""), "tutor_id metadata")
		student = flag.String("student-id", getenv("STUDENT_ID", ""), "student_id metadata")
		amount  = flag.Int64("amount-cents", 5000, "checkout amount in cents")
		secret  = flag.String("secret", getenv("STRIPE_WEBHOOK_SECRET", ""), "stripe webhook signing secret (whsec_...)")
	)
	flag.Parse()

	if strings.TrimSpace(*secret) == "" {
		fatal("STRIPE_WEBHOOK_SECRET is required")
	}
	if strings.TrimSpace(*tutor) == "" {
		fatal("TUTOR_ID is required")
	}

	now := time.Now().UTC()
	eventID := fmt.Sprintf("evt_test_%d", now.UnixNano())

	payload, err := buildEventJSON(eventID, *evtType, now, *tutor, *student, *amount)
	if err != nil {
		fatal(err.Error())
	}

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    *secret,
		Timestamp: now,
		Scheme:    "v1",
	})

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(*baseURL, "/")+"/api/v1/payments/stripe/webhook", bytes.NewReader(payload))
	if err != nil {
		fatal(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signed.Header)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatal(err.Error())
	}
	defer resp.Body.Close()

	fmt.Printf("status=%d\n", resp.StatusCode)
}

func buildEventJSON(eventID, eventType string, t time.Time, tutorID, studentID string, amountCents int64) ([]byte, error) {
	if eventType != "checkout.session.completed" && eventType != "checkout.session.expired" {
		return nil, fmt.Errorf("unsupported event type: %s", eventType)
	}
	return json.Marshal(map[string]any{
		"id":          eventID,
		"object":      "event",
		"created":     t.Unix(),
		"type":        eventType,
		"api_version": "2020-08-27",
		"data": map[string]any{
			"object": map[string]any{
				"id":           "cs_test_123",
				"object":       "checkout.session",
				"amount_total": amountCents,
				"currency":     "usd",
				"metadata": map[string]any{
					"tutor_id":   tutorID,
					"student_id": studentID,
				},
			},
		},
	})
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
