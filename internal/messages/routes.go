// Package messages exposes the message forwarding endpoints. Every route
// is bearer-protected and maps 1:1 onto one Slack Web API call.
package messages

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"slackbridge/internal/apperr"
	"slackbridge/internal/auth"
	"slackbridge/internal/respond"
	"slackbridge/internal/slack"
)

// RegisterRoutes mounts the message endpoints behind the auth gate.
func RegisterRoutes(r chi.Router, client *slack.Client, rw *respond.Writer) {
	r.Route("/messages", func(r chi.Router) {
		r.Use(auth.RequireAuth(client, rw))

		r.Post("/send", handleSend(client, rw))
		r.Post("/schedule", handleSchedule(client, rw))
		r.Get("/retrieve/{channel}", handleRetrieve(client, rw))
		r.Get("/retrieve/{channel}/{timestamp}", handleRetrieveOne(client, rw))
		r.Put("/edit", handleEdit(client, rw))
		r.Delete("/delete/{channel}/{timestamp}", handleDelete(client, rw))
		r.Get("/channels", handleChannels(client, rw))
		r.Get("/permalink/{channel}/{timestamp}", handlePermalink(client, rw))
	})
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.New(apperr.CodeValidation, "Invalid request body")
	}
	return nil
}

func handleSend(client *slack.Client, rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := decodeBody(r, &req); err != nil {
			rw.Error(w, r, err)
			return
		}
		if err := checkPayload(req); err != nil {
			rw.Error(w, r, err)
			return
		}

		token, _ := auth.TokenFrom(r.Context())
		result, err := client.SendMessage(r.Context(), token, slack.OutgoingMessage{
			Channel:     req.Channel,
			Text:        req.Text,
			Blocks:      req.Blocks,
			Attachments: req.Attachments,
			ThreadTS:    req.ThreadTS,
		})
		if err != nil {
			rw.Error(w, r, apperr.Retag(err, apperr.CodeSendMessage))
			return
		}
		rw.Success(w, result)
	}
}

func handleSchedule(client *slack.Client, rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleRequest
		if err := decodeBody(r, &req); err != nil {
			rw.Error(w, r, err)
			return
		}
		if err := checkPayload(req); err != nil {
			rw.Error(w, r, err)
			return
		}

		postAt, err := time.Parse(time.RFC3339, req.ScheduleTime)
		if err != nil {
			rw.Error(w, r, apperr.New(apperr.CodeValidation, `"scheduleTime" must be a valid ISO 8601 date`))
			return
		}
		// Strictly future; checked before any upstream call.
		if !postAt.After(time.Now()) {
			rw.Error(w, r, apperr.New(apperr.CodeInvalidScheduleTime, "Schedule time must be in the future"))
			return
		}

		token, _ := auth.TokenFrom(r.Context())
		result, err := client.ScheduleMessage(r.Context(), token, slack.OutgoingMessage{
			Channel:     req.Channel,
			Text:        req.Text,
			Blocks:      req.Blocks,
			Attachments: req.Attachments,
		}, postAt)
		if err != nil {
			rw.Error(w, r, apperr.Retag(err, apperr.CodeScheduleMessage))
			return
		}
		rw.Success(w, result)
	}
}

func handleRetrieve(client *slack.Client, rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		limit := 0
		if l := query.Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		token, _ := auth.TokenFrom(r.Context())
		result, err := client.GetMessages(r.Context(), token, slack.HistoryParams{
			Channel: chi.URLParam(r, "channel"),
			Latest:  query.Get("latest"),
			Oldest:  query.Get("oldest"),
			Limit:   limit,
		})
		if err != nil {
			rw.Error(w, r, apperr.Retag(err, apperr.CodeRetrieveMessages))
			return
		}
		rw.Success(w, result)
	}
}

func handleRetrieveOne(client *slack.Client, rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timestamp := chi.URLParam(r, "timestamp")

		token, _ := auth.TokenFrom(r.Context())
		result, err := client.GetMessages(r.Context(), token, slack.HistoryParams{
			Channel:   chi.URLParam(r, "channel"),
			Latest:    timestamp,
			Oldest:    timestamp,
			Inclusive: true,
			Limit:     1,
		})
		if err != nil {
			rw.Error(w, r, apperr.Retag(err, apperr.CodeRetrieveMessage))
			return
		}
		if len(result.Messages) == 0 {
			rw.Error(w, r, apperr.New(apperr.CodeMessageNotFound, "Message not found"))
			return
		}
		rw.Success(w, map[string]any{"message": result.Messages[0]})
	}
}

func handleEdit(client *slack.Client, rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req editRequest
		if err := decodeBody(r, &req); err != nil {
			rw.Error(w, r, err)
			return
		}
		if err := checkPayload(req); err != nil {
			rw.Error(w, r, err)
			return
		}

		token, _ := auth.TokenFrom(r.Context())
		result, err := client.UpdateMessage(r.Context(), token, slack.UpdateRequest{
			Channel:     req.Channel,
			Timestamp:   req.Timestamp,
			Text:        req.Text,
			Blocks:      req.Blocks,
			Attachments: req.Attachments,
		})
		if err != nil {
			rw.Error(w, r, apperr.Retag(err, apperr.CodeEditMessage))
			return
		}
		rw.Success(w, result)
	}
}

func handleDelete(client *slack.Client, rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, _ := auth.TokenFrom(r.Context())
		result, err := client.DeleteMessage(r.Context(), token,
			chi.URLParam(r, "channel"), chi.URLParam(r, "timestamp"))
		if err != nil {
			rw.Error(w, r, apperr.Retag(err, apperr.CodeDeleteMessage))
			return
		}
		rw.Success(w, result)
	}
}

func handleChannels(client *slack.Client, rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		limit := 0
		if l := query.Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		token, _ := auth.TokenFrom(r.Context())
		result, err := client.GetChannels(r.Context(), token, slack.ChannelsParams{
			Types: query.Get("types"),
			Limit: limit,
		})
		if err != nil {
			rw.Error(w, r, apperr.Retag(err, apperr.CodeGetChannels))
			return
		}
		rw.Success(w, result)
	}
}

func handlePermalink(client *slack.Client, rw *respond.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, _ := auth.TokenFrom(r.Context())
		result, err := client.GetPermalink(r.Context(), token,
			chi.URLParam(r, "channel"), chi.URLParam(r, "timestamp"))
		if err != nil {
			rw.Error(w, r, apperr.Retag(err, apperr.CodeGetPermalink))
			return
		}
		rw.Success(w, result)
	}
}
