package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"

	"github.com/fatih/color"
)

// Walks a running server through one URL-mode analysis:
//
//	SMOKE_BASE_URL=http://localhost:3000 SMOKE_IMAGE_URL=https://... go run ./scripts
const defaultBaseURL = "http://localhost:3000"

var client *http.Client

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper. The cookie jar carries the session cookie between calls.
func sendRequest(baseURL, method, url string, body interface{}) (*http.Response, map[string]interface{}, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return resp, nil, err
	}
	return resp, payload, nil
}

func step(title string, fn func() (*http.Response, map[string]interface{}, error)) {
	color.Yellow("\n%s", title)
	resp, payload, err := fn()
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 400 {
		color.Red("Status: %s", resp.Status)
	} else {
		color.Green("Status: %s", resp.Status)
	}
	prettyPrint(payload)
}

func main() {
	baseURL := os.Getenv("SMOKE_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	imageURL := os.Getenv("SMOKE_IMAGE_URL")
	if imageURL == "" {
		imageURL = "https://upload.wikimedia.org/wikipedia/commons/4/4c/Auto_rickshaw_in_India.jpg"
	}

	jar, _ := cookiejar.New(nil)
	client = &http.Client{Jar: jar, Timeout: 60 * time.Second}
	api := "/api/analysis/v1/session"

	color.Cyan("🚀 Starting Rickshaw Client API Smoke Test\n")

	step("1. Open session", func() (*http.Response, map[string]interface{}, error) {
		return sendRequest(baseURL, http.MethodGet, api, nil)
	})
	step("2. Submit without an image (expects a validation message)", func() (*http.Response, map[string]interface{}, error) {
		return sendRequest(baseURL, http.MethodPost, api+"/submit?wait=true", nil)
	})
	step("3. Set image URL", func() (*http.Response, map[string]interface{}, error) {
		return sendRequest(baseURL, http.MethodPut, api+"/url", map[string]string{"image_url": imageURL})
	})
	step("4. Submit and wait", func() (*http.Response, map[string]interface{}, error) {
		return sendRequest(baseURL, http.MethodPost, api+"/submit?wait=true", nil)
	})
	step("5. Reset", func() (*http.Response, map[string]interface{}, error) {
		return sendRequest(baseURL, http.MethodDelete, api, nil)
	})

	color.Cyan("\n✅ Smoke Sequence Complete")
}
