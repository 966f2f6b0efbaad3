package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	APIKey    string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

// readPayload lee un JSON y lo envuelve en {key: [...]} si viene como array pelado.
func readPayload(path, key string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []map[string]any
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return json.Marshal(map[string]any{key: items})
	}
	return trimmed, nil
}

func main() {
	var (
		baseURL = envOr("MODELGATE_URL", "http://localhost:8080")
		apiKey  = envOr("MODELGATE_API_KEY", "")
		out     = envOr("MODELGATE_OUT", "text")
		timeout = 60 * time.Second
	)

	root := &cobra.Command{
		Use:   "modelgate",
		Short: "CLI de operación para el gateway de modelos",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del gateway (env MODELGATE_URL)")
	root.PersistentFlags().StringVar(&apiKey, "api-key", apiKey, "API secret para /api (env MODELGATE_API_KEY)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	httpClient := &http.Client{Timeout: timeout}
	cl := &client{BaseURL: baseURL, APIKey: apiKey, OutFormat: out, HTTP: httpClient}

	// reconstruir el cliente una vez parseados los flags
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL = baseURL
		cl.APIKey = apiKey
		cl.OutFormat = out
	}

	requireKey := func(cmd *cobra.Command, args []string) error {
		if apiKey == "" {
			return fmt.Errorf("falta API key (flag --api-key o env MODELGATE_API_KEY)")
		}
		return nil
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Liveness del gateway (GET /health, sin auth)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/health", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("health fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Presencia de configuración del gateway (GET /debug/env)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/debug/env", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}

	readyCmd := &cobra.Command{
		Use:   "ready",
		Short: "Readiness con estado por componente (GET /readyz)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/readyz", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			if status/100 != 2 {
				return fmt.Errorf("gateway no listo: status=%d", status)
			}
			return nil
		},
	}

	// grupo models
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Operaciones sobre el catálogo de modelos",
	}

	var replaceFile string
	replaceCmd := &cobra.Command{
		Use:     "replace",
		Short:   "Reemplaza el catálogo completo (borra todo e inserta por lotes)",
		PreRunE: requireKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			if replaceFile == "" {
				return fmt.Errorf("--file es requerido")
			}
			payload, err := readPayload(replaceFile, "models")
			if err != nil {
				return err
			}
			status, body, err := cl.do("POST", "/api/models/replace", payload)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("replace fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	replaceCmd.Flags().StringVarP(&replaceFile, "file", "f", "", "JSON con los modelos ({\"models\": [...]} o array pelado)")

	// grupo staging
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Operaciones sobre la tabla de staging",
	}

	var insertFile string
	insertCmd := &cobra.Command{
		Use:     "insert",
		Short:   "Inserta URLs descubiertas en staging",
		PreRunE: requireKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			if insertFile == "" {
				return fmt.Errorf("--file es requerido")
			}
			payload, err := readPayload(insertFile, "urls")
			if err != nil {
				return err
			}
			status, body, err := cl.do("POST", "/api/staging/insert", payload)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("insert fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	insertCmd.Flags().StringVarP(&insertFile, "file", "f", "", "JSON con las URLs ({\"urls\": [...]} o array pelado)")

	var processLimit int
	processCmd := &cobra.Command{
		Use:     "process",
		Short:   "Cuenta registros pendientes de staging (no los modifica)",
		PreRunE: requireKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := []byte(nil)
			if processLimit > 0 {
				payload, _ = json.Marshal(map[string]any{"limit": processLimit})
			} else {
				payload = []byte(`{}`)
			}
			status, body, err := cl.do("POST", "/api/staging/process", payload)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("process fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	processCmd.Flags().IntVar(&processLimit, "limit", 0, "Máximo de registros a revisar (default del servidor: 10)")

	// wiring
	modelsCmd.AddCommand(replaceCmd)
	stagingCmd.AddCommand(insertCmd)
	stagingCmd.AddCommand(processCmd)

	root.AddCommand(healthCmd)
	root.AddCommand(envCmd)
	root.AddCommand(readyCmd)
	root.AddCommand(modelsCmd)
	root.AddCommand(stagingCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
