package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"meetscribe/internal/app/errors"
	"meetscribe/internal/app/model"
	"meetscribe/internal/app/transcribe"
)

// Client implements transcribe.SpeechService against the AssemblyAI v2 REST
// API: upload the audio bytes, create a transcript job with speaker labels,
// then poll the transcript resource until it settles.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.SugaredLogger
}

func NewClient(baseURL, apiKey string, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL         string `json:"audio_url"`
	SpeakerLabels    bool   `json:"speaker_labels"`
	SpeakersExpected int    `json:"speakers_expected,omitempty"`
	LanguageCode     string `json:"language_code,omitempty"`
	Punctuate        bool   `json:"punctuate"`
	FormatText       bool   `json:"format_text"`
}

type transcriptUtterance struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
}

type transcriptResponse struct {
	ID         string                `json:"id"`
	Status     string                `json:"status"`
	Error      string                `json:"error"`
	Utterances []transcriptUtterance `json:"utterances"`
}

func (c *Client) Upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", errors.Wrapf(err, "opening audio file %s", audioPath)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", f)
	if err != nil {
		return "", err
	}
	req.Header.Set("authorization", c.apiKey)
	req.Header.Set("content-type", "application/octet-stream")

	var out uploadResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", &errors.ServiceError{Code: "empty_upload_url", Message: "upload response carried no url"}
	}
	return out.UploadURL, nil
}

func (c *Client) Submit(ctx context.Context, audioURL string, tr transcribe.Request) (string, error) {
	body, err := json.Marshal(transcriptRequest{
		AudioURL:         audioURL,
		SpeakerLabels:    true,
		SpeakersExpected: tr.SpeakersExpected,
		LanguageCode:     tr.LanguageCode,
		Punctuate:        true,
		FormatText:       true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("authorization", c.apiKey)
	req.Header.Set("content-type", "application/json")

	var out transcriptResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &errors.ServiceError{Code: "empty_transcript_id", Message: "submit response carried no id"}
	}
	return out.ID, nil
}

func (c *Client) Status(ctx context.Context, remoteID string) (transcribe.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript/"+remoteID, nil)
	if err != nil {
		return transcribe.Result{}, err
	}
	req.Header.Set("authorization", c.apiKey)

	var out transcriptResponse
	if err := c.do(req, &out); err != nil {
		return transcribe.Result{}, err
	}

	switch out.Status {
	case "completed":
		utterances := make([]model.Utterance, 0, len(out.Utterances))
		for _, u := range out.Utterances {
			utterances = append(utterances, model.Utterance{
				Speaker:     u.Speaker,
				SpeakerName: u.Speaker,
				Text:        u.Text,
				Start:       u.Start,
				End:         u.End,
				Confidence:  u.Confidence,
			})
		}
		return transcribe.Result{Status: transcribe.StatusCompleted, Utterances: utterances}, nil
	case "error":
		// Service-reported failures (bad audio, quota) are terminal.
		return transcribe.Result{Status: transcribe.StatusFailed, Reason: out.Error}, nil
	default:
		return transcribe.Result{Status: transcribe.StatusPending}, nil
	}
}

func (c *Client) Cancel(ctx context.Context, remoteID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/transcript/"+remoteID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("authorization", c.apiKey)
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &errors.ServiceError{Code: "request_failed", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.ServiceError{Code: "response_read_failed", Message: err.Error(), Retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		return &errors.ServiceError{
			Code:    fmt.Sprintf("http_%d", resp.StatusCode),
			Message: string(truncate(data, 500)),
			// Server errors and throttling are worth another attempt.
			Retryable: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &errors.ServiceError{Code: "response_parse_failed", Message: err.Error()}
	}
	return nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
