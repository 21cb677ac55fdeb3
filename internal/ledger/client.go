package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"soundtrace/config"

	logger "github.com/Bparsons0904/goLogger"
)

// Client writes records and blobs to the append-only ledger. Writes are
// acknowledged with a durable URI; visibility in the local projection comes
// later, through the external indexer.
type Client interface {
	CreateRecord(ctx context.Context, collection, rkey string, record any) (string, error)
	UploadBlob(ctx context.Context, data []byte, contentType string) (*BlobRef, error)
	FetchBlob(ctx context.Context, url string) ([]byte, string, error)
}

type httpClient struct {
	baseURL string
	token   string
	client  *http.Client
	log     logger.Logger
}

func NewClient(config config.Config) Client {
	return &httpClient{
		baseURL: config.LedgerURL,
		token:   config.LedgerToken,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.New("ledgerClient"),
	}
}

type createRecordRequest struct {
	Collection string `json:"collection"`
	RKey       string `json:"rkey"`
	Record     any    `json:"record"`
}

type createRecordResponse struct {
	URI string `json:"uri"`
}

func (c *httpClient) CreateRecord(ctx context.Context, collection, rkey string, record any) (string, error) {
	log := c.log.Function("CreateRecord")

	body, err := json.Marshal(createRecordRequest{
		Collection: collection,
		RKey:       rkey,
		Record:     record,
	})
	if err != nil {
		return "", log.Err("failed to marshal record", err, "collection", collection)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/records",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", log.Err("failed to create record request", err, "collection", collection)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", log.Err("failed to submit record", err, "collection", collection, "rkey", rkey)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Er("failed to close response body", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", log.Err(
			"record submission rejected",
			fmt.Errorf("unexpected status: %d", resp.StatusCode),
			"collection", collection,
			"rkey", rkey,
		)
	}

	var created createRecordResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", log.Err("failed to decode record response", err, "collection", collection)
	}
	if created.URI == "" {
		return "", log.ErrMsg("record response missing URI")
	}

	log.Info("Record created", "collection", collection, "rkey", rkey, "uri", created.URI)
	return created.URI, nil
}

func (c *httpClient) UploadBlob(ctx context.Context, data []byte, contentType string) (*BlobRef, error) {
	log := c.log.Function("UploadBlob")

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/blobs",
		bytes.NewReader(data),
	)
	if err != nil {
		return nil, log.Err("failed to create blob request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, log.Err("failed to upload blob", err, "contentType", contentType, "size", len(data))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Er("failed to close response body", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, log.Err(
			"blob upload rejected",
			fmt.Errorf("unexpected status: %d", resp.StatusCode),
			"contentType", contentType,
		)
	}

	var blobResponse struct {
		Blob BlobRef `json:"blob"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&blobResponse); err != nil {
		return nil, log.Err("failed to decode blob response", err)
	}

	return &blobResponse.Blob, nil
}

// FetchBlob downloads external artwork so it can be re-uploaded as a ledger
// blob. Returns the bytes and the content type the server reported.
func (c *httpClient) FetchBlob(ctx context.Context, url string) ([]byte, string, error) {
	log := c.log.Function("FetchBlob")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", log.Err("failed to create fetch request", err, "url", url)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", log.Err("failed to fetch blob", err, "url", url)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Er("failed to close response body", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", log.Err(
			"blob fetch rejected",
			fmt.Errorf("unexpected status: %d", resp.StatusCode),
			"url", url,
		)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", log.Err("failed to read blob body", err, "url", url)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
