// Package slack wraps the Slack Web API endpoints this proxy forwards to.
// Every method performs exactly one upstream call, unwraps the {ok, error}
// envelope, and surfaces failures as tagged errors. No retries.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"slackbridge/internal/apperr"
)

// DefaultBaseURL is the production Slack Web API root.
const DefaultBaseURL = "https://slack.com/api"

const (
	defaultLimit        = 100
	defaultChannelTypes = "public_channel,private_channel"
)

// Client talks to the Slack Web API. It holds no per-user state; the
// bearer token is supplied on each call.
type Client struct {
	http *resty.Client
}

// New creates a client against the given API root. An empty baseURL means
// production Slack; timeout bounds every call.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
	}
}

// ExchangeCode trades an OAuth authorization code for a token grant via
// oauth.v2.access. Slack expects this call form-encoded.
func (c *Client) ExchangeCode(ctx context.Context, req ExchangeRequest) (*TokenGrant, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     req.ClientID,
			"client_secret": req.ClientSecret,
			"code":          req.Code,
			"redirect_uri":  req.RedirectURI,
		}).
		Post("/oauth.v2.access")

	var wire oauthAccessResponse
	if err := c.unwrap(resp, err, &wire, "OAuth exchange failed"); err != nil {
		return nil, err
	}
	return &TokenGrant{
		AccessToken: wire.AccessToken,
		TokenType:   wire.TokenType,
		Scope:       wire.Scope,
		BotUserID:   wire.BotUserID,
		AppID:       wire.AppID,
		Team:        wire.Team,
		Enterprise:  wire.Enterprise,
		AuthedUser:  wire.AuthedUser,
	}, nil
}

// VerifyToken resolves the identity behind a bearer token via auth.test.
func (c *Client) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	var wire authTestResponse
	if err := c.post(ctx, "/auth.test", token, struct{}{}, &wire, "Token verification failed"); err != nil {
		return nil, err
	}
	return &Identity{
		UserID: wire.UserID,
		User:   wire.User,
		TeamID: wire.TeamID,
		Team:   wire.Team,
		URL:    wire.URL,
		BotID:  wire.BotID,
	}, nil
}

// GetUserInfo fetches a user's profile via users.info.
func (c *Client) GetUserInfo(ctx context.Context, token, userID string) (*User, error) {
	var wire userInfoResponse
	query := map[string]string{"user": userID}
	if err := c.get(ctx, "/users.info", token, query, &wire, "Failed to get user info"); err != nil {
		return nil, err
	}
	return &wire.User, nil
}

// SendMessage posts a message via chat.postMessage.
func (c *Client) SendMessage(ctx context.Context, token string, msg OutgoingMessage) (*SendResult, error) {
	payload := map[string]any{
		"channel": msg.Channel,
		"text":    msg.Text,
	}
	if len(msg.Blocks) > 0 {
		payload["blocks"] = msg.Blocks
	}
	if len(msg.Attachments) > 0 {
		payload["attachments"] = msg.Attachments
	}
	if msg.ThreadTS != "" {
		payload["thread_ts"] = msg.ThreadTS
	}

	var wire postMessageResponse
	if err := c.post(ctx, "/chat.postMessage", token, payload, &wire, "Failed to send message"); err != nil {
		return nil, err
	}
	return &SendResult{Channel: wire.Channel, Timestamp: wire.TS, Message: wire.Message}, nil
}

// ScheduleMessage queues a future send via chat.scheduleMessage. Callers
// must ensure postAt is in the future; Slack receives it as epoch seconds.
func (c *Client) ScheduleMessage(ctx context.Context, token string, msg OutgoingMessage, postAt time.Time) (*ScheduleResult, error) {
	payload := map[string]any{
		"channel": msg.Channel,
		"text":    msg.Text,
		"post_at": postAt.Unix(),
	}
	if len(msg.Blocks) > 0 {
		payload["blocks"] = msg.Blocks
	}
	if len(msg.Attachments) > 0 {
		payload["attachments"] = msg.Attachments
	}

	var wire scheduleMessageResponse
	if err := c.post(ctx, "/chat.scheduleMessage", token, payload, &wire, "Failed to schedule message"); err != nil {
		return nil, err
	}
	return &ScheduleResult{
		Channel:            wire.Channel,
		ScheduledMessageID: wire.ScheduledMessageID,
		PostAt:             wire.PostAt,
	}, nil
}

// UpdateMessage edits an existing message via chat.update.
func (c *Client) UpdateMessage(ctx context.Context, token string, req UpdateRequest) (*UpdateResult, error) {
	payload := map[string]any{
		"channel": req.Channel,
		"ts":      req.Timestamp,
		"text":    req.Text,
	}
	if len(req.Blocks) > 0 {
		payload["blocks"] = req.Blocks
	}
	if len(req.Attachments) > 0 {
		payload["attachments"] = req.Attachments
	}

	var wire updateMessageResponse
	if err := c.post(ctx, "/chat.update", token, payload, &wire, "Failed to update message"); err != nil {
		return nil, err
	}
	return &UpdateResult{Channel: wire.Channel, Timestamp: wire.TS, Text: wire.Text}, nil
}

// DeleteMessage removes a message via chat.delete.
func (c *Client) DeleteMessage(ctx context.Context, token, channel, timestamp string) (*DeleteResult, error) {
	payload := map[string]any{
		"channel": channel,
		"ts":      timestamp,
	}

	var wire deleteMessageResponse
	if err := c.post(ctx, "/chat.delete", token, payload, &wire, "Failed to delete message"); err != nil {
		return nil, err
	}
	return &DeleteResult{Channel: wire.Channel, Timestamp: wire.TS}, nil
}

// GetMessages lists a window of channel history via conversations.history.
// Ordering is whatever Slack returns; the proxy does not re-sort.
func (c *Client) GetMessages(ctx context.Context, token string, params HistoryParams) (*HistoryResult, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	query := map[string]string{
		"channel": params.Channel,
		"limit":   strconv.Itoa(limit),
	}
	if params.Latest != "" {
		query["latest"] = params.Latest
	}
	if params.Oldest != "" {
		query["oldest"] = params.Oldest
	}
	if params.Inclusive {
		query["inclusive"] = "1"
	}

	var wire historyResponse
	if err := c.get(ctx, "/conversations.history", token, query, &wire, "Failed to get messages"); err != nil {
		return nil, err
	}
	return &HistoryResult{
		Messages:         wire.Messages,
		HasMore:          wire.HasMore,
		ResponseMetadata: wire.ResponseMetadata,
	}, nil
}

// GetChannels lists conversations visible to the token via conversations.list.
func (c *Client) GetChannels(ctx context.Context, token string, params ChannelsParams) (*ChannelsResult, error) {
	types := params.Types
	if types == "" {
		types = defaultChannelTypes
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	query := map[string]string{
		"types": types,
		"limit": strconv.Itoa(limit),
	}

	var wire channelsResponse
	if err := c.get(ctx, "/conversations.list", token, query, &wire, "Failed to get channels"); err != nil {
		return nil, err
	}
	return &ChannelsResult{Channels: wire.Channels, ResponseMetadata: wire.ResponseMetadata}, nil
}

// GetPermalink resolves a shareable link via chat.getPermalink.
func (c *Client) GetPermalink(ctx context.Context, token, channel, messageTS string) (*PermalinkResult, error) {
	query := map[string]string{
		"channel":    channel,
		"message_ts": messageTS,
	}

	var wire permalinkResponse
	if err := c.get(ctx, "/chat.getPermalink", token, query, &wire, "Failed to get permalink"); err != nil {
		return nil, err
	}
	return &PermalinkResult{Permalink: wire.Permalink}, nil
}

func (c *Client) post(ctx context.Context, path, token string, body any, out envelope, failMsg string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
	return c.unwrap(resp, err, out, failMsg)
}

func (c *Client) get(ctx context.Context, path, token string, query map[string]string, out envelope, failMsg string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(query).
		Get(path)
	return c.unwrap(resp, err, out, failMsg)
}

// unwrap classifies transport failures, decodes the body, and converts an
// ok:false envelope into a tagged error carrying the upstream error string.
func (c *Client) unwrap(resp *resty.Response, err error, out envelope, failMsg string) error {
	if err != nil {
		return classify(err)
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return apperr.Wrap(apperr.CodeSlackAPI, fmt.Errorf("decoding Slack response: %w", err))
	}
	if ok, apiErr := out.status(); !ok {
		msg := failMsg
		if apiErr != "" {
			msg = apiErr
		}
		return apperr.New(apperr.CodeSlackAPI, msg)
	}
	return nil
}

// classify maps transport-level failures onto the timeout/network codes.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &apperr.Error{Code: apperr.CodeTimeout, Message: "Request timeout", Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &apperr.Error{Code: apperr.CodeTimeout, Message: "Request timeout", Err: err}
	}
	return &apperr.Error{Code: apperr.CodeNetwork, Message: "Unable to connect to Slack API", Err: err}
}
