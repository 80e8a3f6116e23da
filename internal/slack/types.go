package slack

import "encoding/json"

// apiEnvelope is the uniform wrapper on every Slack Web API response.
// Adapter methods unwrap it; callers only ever see the payload or an error.
type apiEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (e apiEnvelope) status() (bool, string) { return e.OK, e.Error }

// envelope is implemented by every wire response via an embedded apiEnvelope.
type envelope interface {
	status() (ok bool, apiError string)
}

// Identity is the principal resolved from a bearer token by auth.test.
type Identity struct {
	UserID string `json:"userId"`
	User   string `json:"user"`
	TeamID string `json:"teamId"`
	Team   string `json:"team"`
	URL    string `json:"url"`
	BotID  string `json:"botId,omitempty"`
}

// ExchangeRequest carries the OAuth authorization-code exchange inputs.
type ExchangeRequest struct {
	ClientID     string
	ClientSecret string
	Code         string
	RedirectURI  string
}

// AuthedUser is the user portion of an OAuth v2 exchange response.
type AuthedUser struct {
	ID          string `json:"id"`
	Scope       string `json:"scope,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
}

// TokenGrant is the unwrapped result of an authorization-code exchange.
// Team and Enterprise are passed through as Slack returns them.
type TokenGrant struct {
	AccessToken string          `json:"accessToken"`
	TokenType   string          `json:"tokenType"`
	Scope       string          `json:"scope"`
	BotUserID   string          `json:"botUserId,omitempty"`
	AppID       string          `json:"appId,omitempty"`
	Team        json.RawMessage `json:"team,omitempty"`
	Enterprise  json.RawMessage `json:"enterprise,omitempty"`
	AuthedUser  AuthedUser      `json:"authedUser"`
}

// User is a Slack user record from users.info, wire-tagged.
type User struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	RealName string      `json:"real_name"`
	TZ       string      `json:"tz"`
	Profile  UserProfile `json:"profile"`
}

// UserProfile holds the profile fields this proxy exposes.
type UserProfile struct {
	Email      string `json:"email"`
	Image192   string `json:"image_192"`
	StatusText string `json:"status_text"`
}

// OutgoingMessage describes a message to send. Blocks and Attachments are
// raw pass-through; the proxy never interprets them.
type OutgoingMessage struct {
	Channel     string
	Text        string
	Blocks      json.RawMessage
	Attachments json.RawMessage
	ThreadTS    string
}

// SendResult is the unwrapped chat.postMessage payload.
type SendResult struct {
	Channel   string          `json:"channel"`
	Timestamp string          `json:"timestamp"`
	Message   json.RawMessage `json:"message,omitempty"`
}

// ScheduleResult is the unwrapped chat.scheduleMessage payload.
type ScheduleResult struct {
	Channel            string `json:"channel"`
	ScheduledMessageID string `json:"scheduledMessageId"`
	PostAt             int64  `json:"postAt"`
}

// UpdateRequest describes an edit of an existing message.
type UpdateRequest struct {
	Channel     string
	Timestamp   string
	Text        string
	Blocks      json.RawMessage
	Attachments json.RawMessage
}

// UpdateResult is the unwrapped chat.update payload.
type UpdateResult struct {
	Channel   string `json:"channel"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// DeleteResult is the unwrapped chat.delete payload.
type DeleteResult struct {
	Channel   string `json:"channel"`
	Timestamp string `json:"timestamp"`
}

// HistoryParams select a window of conversations.history. Latest and
// Oldest are Slack message timestamps; Limit defaults to 100.
type HistoryParams struct {
	Channel   string
	Latest    string
	Oldest    string
	Inclusive bool
	Limit     int
}

// HistoryResult is the unwrapped conversations.history payload. Messages
// keep the upstream's shape and order.
type HistoryResult struct {
	Messages         []json.RawMessage `json:"messages"`
	HasMore          bool              `json:"hasMore"`
	ResponseMetadata json.RawMessage   `json:"responseMetadata,omitempty"`
}

// ChannelsParams select conversations.list output. Types defaults to
// public and private channels; Limit defaults to 100.
type ChannelsParams struct {
	Types string
	Limit int
}

// ChannelsResult is the unwrapped conversations.list payload.
type ChannelsResult struct {
	Channels         json.RawMessage `json:"channels"`
	ResponseMetadata json.RawMessage `json:"responseMetadata,omitempty"`
}

// PermalinkResult is the unwrapped chat.getPermalink payload.
type PermalinkResult struct {
	Permalink string `json:"permalink"`
}

// Wire response shapes, one per upstream endpoint.

type oauthAccessResponse struct {
	apiEnvelope
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	Scope       string          `json:"scope"`
	BotUserID   string          `json:"bot_user_id"`
	AppID       string          `json:"app_id"`
	Team        json.RawMessage `json:"team"`
	Enterprise  json.RawMessage `json:"enterprise"`
	AuthedUser  AuthedUser      `json:"authed_user"`
}

type authTestResponse struct {
	apiEnvelope
	UserID string `json:"user_id"`
	User   string `json:"user"`
	TeamID string `json:"team_id"`
	Team   string `json:"team"`
	URL    string `json:"url"`
	BotID  string `json:"bot_id"`
}

type userInfoResponse struct {
	apiEnvelope
	User User `json:"user"`
}

type postMessageResponse struct {
	apiEnvelope
	Channel string          `json:"channel"`
	TS      string          `json:"ts"`
	Message json.RawMessage `json:"message"`
}

type scheduleMessageResponse struct {
	apiEnvelope
	Channel            string `json:"channel"`
	ScheduledMessageID string `json:"scheduled_message_id"`
	PostAt             int64  `json:"post_at"`
}

type updateMessageResponse struct {
	apiEnvelope
	Channel string `json:"channel"`
	TS      string `json:"ts"`
	Text    string `json:"text"`
}

type deleteMessageResponse struct {
	apiEnvelope
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

type historyResponse struct {
	apiEnvelope
	Messages         []json.RawMessage `json:"messages"`
	HasMore          bool              `json:"has_more"`
	ResponseMetadata json.RawMessage   `json:"response_metadata"`
}

type channelsResponse struct {
	apiEnvelope
	Channels         json.RawMessage `json:"channels"`
	ResponseMetadata json.RawMessage `json:"response_metadata"`
}

type permalinkResponse struct {
	apiEnvelope
	Permalink string `json:"permalink"`
}
