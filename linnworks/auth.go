package linnworks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/5amCurfew/tap-linnworks/models"
)

// AuthURL is the fixed credential exchange endpoint; package variable so
// tests can point it at a fake server
var AuthURL = "https://api.linnworks.net/api/Auth/AuthorizeByApplication"

const defaultServer = "https://eu-ext.linnworks.net"

// Authorize exchanges the application credentials for a session token and
// the per-account API server returned by Linnworks
func Authorize(config *models.TapConfig) (*Client, error) {
	body, err := json.Marshal(map[string]string{
		"ApplicationId":     config.ApplicationID,
		"ApplicationSecret": config.ApplicationSecret,
		"Token":             config.InstallationToken,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshalling auth request: %w", err)
	}

	req, err := http.NewRequest("POST", AuthURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &AuthError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AuthError{Status: resp.StatusCode, Reason: err.Error()}
	}

	if resp.StatusCode >= 400 {
		return nil, &AuthError{Status: resp.StatusCode, Reason: string(respBody)}
	}

	var session struct {
		Token  string `json:"Token"`
		Server string `json:"Server"`
	}
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, &AuthError{Status: resp.StatusCode, Reason: fmt.Sprintf("error unmarshalling auth response: %v", err)}
	}

	if session.Token == "" {
		return nil, &AuthError{Status: resp.StatusCode, Reason: "no session token in auth response"}
	}

	server := session.Server
	if server == "" {
		server = defaultServer
	}

	log.WithFields(log.Fields{"server": server}).Info("authorised with Linnworks")

	return NewClient(server, session.Token, config.UserAgent), nil
}
