package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/DaviiSA/JA-app/internal/domain"
	"github.com/DaviiSA/JA-app/internal/report"
	"github.com/spf13/cobra"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

type apiError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

// usageError marks failures caused by the command line rather than the server.
type usageError struct {
	code    string
	message string
}

func (e *usageError) Error() string {
	return e.message
}

func Run(args []string, stdout io.Writer, stderr io.Writer) int {
	exitCode := exitOK
	var (
		baseURL string
		timeout time.Duration
	)
	client := func() *apiClient {
		return &apiClient{
			baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
			httpClient: &http.Client{Timeout: timeout},
		}
	}

	root := &cobra.Command{
		Use:           "jxa",
		Short:         "Client for the JXA Linha Viva report service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetArgs(args)
	root.SetOut(stderr)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&baseURL, "base-url", envOrDefault("JXA_BASE_URL", "http://localhost:8080"), "report service base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "HTTP timeout, e.g. 30s")

	root.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check that the service is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exitCode = runRequest(cmd.Context(), client(), stdout, http.MethodGet, "/api/health", nil)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "staff",
		Short: "List the crew roster and the selectable choices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exitCode = runRequest(cmd.Context(), client(), stdout, http.MethodGet, "/api/staff", nil)
			return nil
		},
	})

	root.AddCommand(reportCommand(client, stdout, &exitCode))

	if err := root.ExecuteContext(context.Background()); err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			writeCLIError(stdout, usage.code, usage.message, 0)
			return exitUsage
		}
		writeCLIError(stdout, "invalid_arguments", err.Error()+"\n"+usageText(), 0)
		return exitUsage
	}
	return exitCode
}

func reportCommand(client func() *apiClient, stdout io.Writer, exitCode *int) *cobra.Command {
	var (
		workOrder string
		contract  string
		staff     []string
		entries   []string
		out       string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the service report for a work order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := buildFormState(workOrder, contract, staff, entries)
			if err != nil {
				return err
			}
			*exitCode = runReport(cmd.Context(), client(), stdout, state, out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&workOrder, "work-order", "", "work order number, e.g. OS-4521")
	flags.StringVar(&contract, "contract", "", "contract type: \"Contrato com a Energisa\" or \"Particular\"")
	flags.StringArrayVar(&staff, "staff", nil, "crew member involved, repeatable")
	flags.StringArrayVar(&entries, "entry", nil, "labor item as code:quantity:action, repeatable")
	flags.StringVar(&out, "out", "", "write the report text to this file or directory")
	return cmd
}

func buildFormState(workOrder string, contract string, staff []string, entries []string) (domain.FormState, error) {
	state := domain.FormState{
		WorkOrder:     strings.TrimSpace(workOrder),
		SelectedStaff: []string{},
		Photos:        []string{},
		LaborEntries:  []domain.LaborEntry{},
	}

	if strings.TrimSpace(contract) != "" {
		parsed, err := domain.ParseContractType(strings.TrimSpace(contract))
		if err != nil {
			return state, &usageError{code: "invalid_contract", message: err.Error()}
		}
		state.ContractType = &parsed
	}

	for _, name := range staff {
		name = strings.TrimSpace(name)
		if !domain.IsStaffMember(name) {
			return state, &usageError{code: "unknown_staff", message: fmt.Sprintf("%q is not on the roster", name)}
		}
		state.SelectedStaff = append(state.SelectedStaff, name)
	}

	if len(entries) == 0 {
		return state, &usageError{code: "missing_entry", message: "report requires at least one --entry code:quantity:action"}
	}
	for i, raw := range entries {
		entry, err := parseEntry(strconv.Itoa(i+1), raw)
		if err != nil {
			return state, err
		}
		state.LaborEntries = append(state.LaborEntries, entry)
	}
	return state, nil
}

// parseEntry reads code[:quantity[:action]]. The action defaults to installation.
func parseEntry(id string, raw string) (domain.LaborEntry, error) {
	parts := strings.SplitN(raw, ":", 3)
	entry := domain.LaborEntry{
		ID:   id,
		Code: strings.TrimSpace(parts[0]),
		Type: domain.ActionInstallation,
	}
	if len(parts) > 1 {
		entry.Quantity = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		action, err := domain.ParseActionType(strings.TrimSpace(parts[2]))
		if err != nil {
			return entry, &usageError{code: "invalid_entry", message: err.Error()}
		}
		entry.Type = action
	}
	return entry, nil
}

func runReport(ctx context.Context, client *apiClient, stdout io.Writer, state domain.FormState, out string) int {
	responseBody, err := client.request(ctx, http.MethodPost, "/api/reports", state)
	if err != nil {
		return writeRequestError(stdout, err)
	}

	var response domain.ReportResponse
	if err := json.Unmarshal(responseBody, &response); err != nil {
		writeCLIError(stdout, "invalid_response", err.Error(), 0)
		return exitError
	}
	if !response.Valid {
		writeCLIError(stdout, "invalid_form", "required fields are blank: "+strings.Join(response.Invalid, ", "), 0)
		return exitError
	}

	if strings.TrimSpace(out) != "" {
		path, err := writeReportFile(out, state.WorkOrder, response.Summary)
		if err != nil {
			writeCLIError(stdout, "write_failed", err.Error(), 0)
			return exitError
		}
		response.Filename = path
	}

	if err := writeStructuredJSON(stdout, response); err != nil {
		writeCLIError(stdout, "invalid_response", err.Error(), 0)
		return exitError
	}
	return exitOK
}

// writeReportFile writes into out, or into out/<report filename> when out is a directory.
func writeReportFile(out string, workOrder string, summary string) (string, error) {
	path := out
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		path = filepath.Join(out, report.Filename(workOrder))
	}
	if err := os.WriteFile(path, []byte(summary), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func runRequest(ctx context.Context, client *apiClient, stdout io.Writer, method string, path string, payload any) int {
	responseBody, err := client.request(ctx, method, path, payload)
	if err != nil {
		return writeRequestError(stdout, err)
	}

	var data any
	if err := json.Unmarshal(responseBody, &data); err != nil {
		writeCLIError(stdout, "invalid_response", err.Error(), 0)
		return exitError
	}
	if err := writeStructuredJSON(stdout, data); err != nil {
		writeCLIError(stdout, "invalid_response", err.Error(), 0)
		return exitError
	}
	return exitOK
}

func writeRequestError(stdout io.Writer, err error) int {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		writeCLIError(stdout, apiErr.Code, apiErr.Message, apiErr.Status)
		return exitError
	}
	writeCLIError(stdout, "request_failed", err.Error(), 0)
	return exitError
}

func (c *apiClient) request(ctx context.Context, method string, path string, payload any) ([]byte, error) {
	requestURL, err := c.resolveURL(path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode >= 400 {
		apiErr := &apiError{
			Status:  res.StatusCode,
			Code:    "http_error",
			Message: strings.TrimSpace(string(responseBody)),
		}

		var envelope domain.APIErrorResponse
		if err := json.Unmarshal(responseBody, &envelope); err == nil && envelope.Error.Code != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
			apiErr.RequestID = envelope.Error.RequestID
		}
		return nil, apiErr
	}

	return responseBody, nil
}

func (c *apiClient) resolveURL(path string) (string, error) {
	base := strings.TrimSpace(c.baseURL)
	if base == "" {
		return "", errors.New("base URL is required")
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	pathURL, err := url.Parse(path)
	if err != nil {
		return "", err
	}

	return baseURL.ResolveReference(pathURL).String(), nil
}

func writeStructuredJSON(output io.Writer, data any) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func writeCLIError(output io.Writer, code string, message string, status int) {
	payload := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
	if status > 0 {
		payload["error"].(map[string]any)["status"] = status
	}

	_ = writeStructuredJSON(output, payload)
}

func usageText() string {
	return strings.Join([]string{
		"usage: jxa [global flags] <command> [command flags]",
		"commands: health, staff, report",
		"global flags: --base-url --timeout",
	}, "\n")
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
