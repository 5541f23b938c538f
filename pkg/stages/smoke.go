// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stages

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flightdesk/flightdeploy/pkg/defaults"
	"github.com/flightdesk/flightdeploy/pkg/errors"
)

// DefaultSmokeMessage is the chat message sent by the smoke test.
const DefaultSmokeMessage = "Find me a flight from New York to Los Angeles"

const chatPath = "/chat"

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	DetectedIntent string `json:"detected_intent,omitempty"`
}

// SmokeResult is the outcome of one chat round trip.
type SmokeResult struct {
	Healthy        bool          `json:"healthy" yaml:"healthy"`
	ConversationID string        `json:"conversationId" yaml:"conversationId"`
	Intent         string        `json:"intent,omitempty" yaml:"intent,omitempty"`
	Reply          string        `json:"reply" yaml:"reply"`
	Latency        time.Duration `json:"latency" yaml:"latency"`
}

// Smoke checks /health and sends one chat message to the LLM service at
// baseURL under a fresh conversation id.
func Smoke(ctx context.Context, client *http.Client, baseURL, message string) (*SmokeResult, error) {
	if client == nil {
		client = NewHTTPClient()
	}
	if message == "" {
		message = DefaultSmokeMessage
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	result := &SmokeResult{ConversationID: uuid.NewString()}

	hctx, cancel := context.WithTimeout(ctx, defaults.ProbeRequestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(hctx, http.MethodGet, baseURL+healthPath, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to build health request", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeOptionalStageWarning, "health check failed", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return result, errors.New(errors.ErrCodeOptionalStageWarning,
			fmt.Sprintf("health check returned HTTP %d", resp.StatusCode))
	}
	result.Healthy = true

	body, err := json.Marshal(chatRequest{Message: message, ConversationID: result.ConversationID})
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeInternal, "failed to encode chat request", err)
	}
	cctx, ccancel := context.WithTimeout(ctx, defaults.SmokeChatTimeout)
	defer ccancel()
	req, err = http.NewRequestWithContext(cctx, http.MethodPost, baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to build chat request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err = client.Do(req)
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeOptionalStageWarning, "chat request failed", err)
	}
	defer resp.Body.Close()
	result.Latency = time.Since(start)

	if resp.StatusCode != http.StatusOK {
		return result, errors.New(errors.ErrCodeOptionalStageWarning,
			fmt.Sprintf("chat returned HTTP %d", resp.StatusCode))
	}
	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return result, errors.Wrap(errors.ErrCodeOptionalStageWarning, "failed to decode chat response", err)
	}
	result.Reply = cr.Response
	result.Intent = cr.DetectedIntent

	slog.Info("chat smoke test passed", "conversation", result.ConversationID,
		"intent", result.Intent, "latency", result.Latency)
	return result, nil
}
