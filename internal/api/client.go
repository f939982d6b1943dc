package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	httpTimeoutEnvKey  = "POGRN_HTTP_TIMEOUT"
	apiTokenEnvKey     = "POGRN_API_TOKEN"
	adminTokenEnvKey   = "POGRN_ADMIN_TOKEN"
)

// Client is a simple HTTP client for the pogrn API.
type Client struct {
	baseURL    string
	http       *http.Client
	authToken  string
	adminToken string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken:  strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
		adminToken: strings.TrimSpace(os.Getenv(adminTokenEnvKey)),
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, nil, &resp)
	return resp, err
}

// ListRecords searches by po_number and vendor_name substrings; empty values match all.
func (c *Client) ListRecords(ctx context.Context, po, vendor string) ([]RecordResponse, error) {
	query := url.Values{}
	if po != "" {
		query.Set("po", po)
	}
	if vendor != "" {
		query.Set("vendor", vendor)
	}
	var resp []RecordResponse
	err := c.do(ctx, http.MethodGet, "/v1/records", query, nil, &resp)
	return resp, err
}

func (c *Client) GetRecord(ctx context.Context, poNumber string) (RecordResponse, error) {
	var resp RecordResponse
	err := c.do(ctx, http.MethodGet, "/v1/records/"+url.PathEscape(poNumber), nil, nil, &resp)
	return resp, err
}

// SubmitPO creates a pending record, uploading the PO document when one is given.
func (c *Client) SubmitPO(ctx context.Context, req SubmitRequest) (RecordResponse, error) {
	var resp RecordResponse
	fields := map[string]string{
		"received_date": req.ReceivedDate,
		"po_number":     req.PONumber,
		"vendor_name":   req.VendorName,
	}
	err := c.doMultipart(ctx, "/v1/records", fields, req.File, false, &resp)
	return resp, err
}

// UpdateGRN uploads the GRN document for an existing record.
func (c *Client) UpdateGRN(ctx context.Context, poNumber string, file FileUpload) (RecordResponse, error) {
	var resp RecordResponse
	err := c.doMultipart(ctx, "/v1/admin/records/"+url.PathEscape(poNumber)+"/grn", nil, &file, true, &resp)
	return resp, err
}

// Download streams a stored document to w and returns its original filename.
func (c *Client) Download(ctx context.Context, poNumber, kind string, w io.Writer) (string, error) {
	endpoint := c.baseURL + "/v1/records/" + url.PathEscape(poNumber) + "/attachments/" + url.PathEscape(kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", decodeError(resp)
	}

	filename := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	_, err = io.Copy(w, resp.Body)
	return filename, err
}

// Dedupe removes repeated po_numbers, keeping the first occurrence.
func (c *Client) Dedupe(ctx context.Context, confirm bool) (DedupeResponse, error) {
	var resp DedupeResponse
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/admin/dedupe", nil)
	if err != nil {
		return resp, err
	}
	if confirm {
		httpReq.Header.Set("X-Confirm", "true")
	}
	c.setAuthHeader(httpReq)
	c.setAdminHeader(httpReq)
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return resp, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= 400 {
		return resp, decodeError(httpResp)
	}
	err = json.NewDecoder(httpResp.Body).Decode(&resp)
	return resp, err
}

// Export streams the table in the given format ("csv" or "xlsx") to a writer.
func (c *Client) Export(ctx context.Context, format string, w io.Writer) error {
	endpoint := c.baseURL + "/v1/export"
	if format != "" {
		endpoint += "?" + url.Values{"format": []string{format}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.setAuthHeader(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *Client) History(ctx context.Context, poNumber string, limit int) ([]HistoryEventResponse, error) {
	query := url.Values{}
	if poNumber != "" {
		query.Set("po", poNumber)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var resp []HistoryEventResponse
	err := c.do(ctx, http.MethodGet, "/v1/history", query, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]string, file *FileUpload, admin bool, out any) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			return err
		}
	}
	if file != nil && file.Content != nil {
		part, err := mw.CreateFormFile("file", file.Filename)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("read %s: %w", file.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setAuthHeader(req)
	if admin {
		c.setAdminHeader(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}

func (c *Client) setAdminHeader(req *http.Request) {
	if c.adminToken == "" || req == nil {
		return
	}
	req.Header.Set("X-Admin-Token", c.adminToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
