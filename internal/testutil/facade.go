package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"forecast-shell/internal/domain"
)

// ServerFacade is a thin client over a running serving shell, with
// one method per endpoint of the hosting contract.
type ServerFacade struct {
	BaseURL string
	Client  *http.Client
}

func NewServerFacade(baseURL string) *ServerFacade {
	return &ServerFacade{BaseURL: baseURL, Client: http.DefaultClient}
}

// FreePort asks the kernel for an unused TCP port.
func FreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func (f *ServerFacade) Ping() error {
	resp, err := f.Client.Get(f.BaseURL + "/ping")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping: status %d", resp.StatusCode)
	}
	return nil
}

func (f *ServerFacade) ExecutionParameters() (map[string]any, error) {
	resp, err := f.Client.Get(f.BaseURL + "/execution-parameters")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("execution-parameters: status %d", resp.StatusCode)
	}
	var params map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&params); err != nil {
		return nil, err
	}
	return params, nil
}

// Invocations posts entries with an interactive configuration and
// returns the decoded predictions.
func (f *ServerFacade) Invocations(entries domain.Dataset, configuration map[string]any) ([]map[string]any, error) {
	body, err := json.Marshal(map[string]any{
		"instances":     entries,
		"configuration": configuration,
	})
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Post(f.BaseURL+"/invocations", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invocations: status %d", resp.StatusCode)
	}

	var decoded struct {
		Predictions []map[string]any `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	return decoded.Predictions, nil
}

// BatchInvocations posts entries as JSON lines, the batch-transform
// request shape, and decodes the JSON-lines response.
func (f *ServerFacade) BatchInvocations(entries domain.Dataset) ([]map[string]any, error) {
	var buf bytes.Buffer
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(append(line, '\n'))
	}

	resp, err := f.Client.Post(f.BaseURL+"/invocations", "application/jsonlines", &buf)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("batch invocations: status %d", resp.StatusCode)
	}

	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		return nil, err
	}

	var predictions []map[string]any
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var p map[string]any
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	return predictions, nil
}
