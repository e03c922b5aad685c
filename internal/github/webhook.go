package github

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/types"
	"github.com/yungbote/freshtrack-backend/internal/utils"
)

// Fingerprint identifies the logical GitHub event behind a delivery. GitHub
// retries deliveries, so two payloads with the same fingerprint are the same
// event and only one gets recorded.
func Fingerprint(data *types.GitHubActivity) string {
	return utils.DeterministicID(
		string(data.Action),
		data.Repository,
		data.Branch,
		data.CommitSHA,
		data.URL,
	)
}

// ParseWebhook turns a GitHub-style webhook payload into zero or one
// activity event for the given session. Classification is by field presence,
// checked in this order; payloads matching nothing are ignored.
func ParseWebhook(userID, sessionID uuid.UUID, payload map[string]any) (*types.ActivityEvent, bool) {
	action, ok := classify(payload)
	if !ok {
		return nil, false
	}

	data := &types.GitHubActivity{
		Action:     action,
		Repository: "unknown",
	}
	if repo, ok := payload["repository"].(map[string]any); ok {
		if name, ok := repo["full_name"].(string); ok && name != "" {
			data.Repository = name
		}
		if url, ok := repo["html_url"].(string); ok {
			data.URL = url
		}
	}
	if ref, ok := payload["ref"].(string); ok {
		data.Branch = ref
	}
	if sha, ok := payload["after"].(string); ok && sha != "" {
		data.CommitSHA = sha
	} else if head, ok := payload["head_commit"].(map[string]any); ok {
		if sha, ok := head["id"].(string); ok {
			data.CommitSHA = sha
		}
	}

	return &types.ActivityEvent{
		ID:        uuid.New(),
		SessionID: sessionID,
		UserID:    userID,
		Type:      types.ActivityGitHub,
		Timestamp: time.Now().UTC(),
		Data:      types.ActivityData{GitHub: data},
	}, true
}

func classify(payload map[string]any) (types.GitHubAction, bool) {
	switch {
	case payload["commits"] != nil:
		return types.GitHubPush, true
	case payload["pull_request"] != nil:
		return types.GitHubPullRequest, true
	case payload["issue"] != nil:
		return types.GitHubIssue, true
	case payload["review"] != nil:
		return types.GitHubReview, true
	case payload["comment"] != nil:
		return types.GitHubComment, true
	}
	return "", false
}
