package osu

import (
	"OsuMatchView/internal/config"
	"OsuMatchView/internal/utils/httpclient"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"OsuMatchView/internal/interfaces"
	"OsuMatchView/internal/model"

	"github.com/sirupsen/logrus"
)

// Ensure Adapter implements interfaces.MatchSource
var _ interfaces.MatchSource = (*Adapter)(nil)

// Adapter osu! API v2 适配器
type Adapter struct {
	cfg        *config.OsuConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewOsuAdapter(cfg *config.OsuConfig, logger *logrus.Logger) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Scope        string `json:"scope"`
}

type tokenResponse struct {
	errorResponse
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e errorResponse) message() string {
	if e.ErrorDescription == "" {
		return e.Error
	}
	return fmt.Sprintf("%s: %s", e.Error, e.ErrorDescription)
}

// FetchToken client_credentials 换取 token，每次请求都重新获取，不做缓存
func (a *Adapter) FetchToken(ctx context.Context) (string, error) {
	scope := a.cfg.Scope
	if scope == "" {
		scope = "public"
	}
	payload, err := json.Marshal(tokenRequest{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		GrantType:    "client_credentials",
		Scope:        scope,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.OAuthURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	body, err := a.do(req)
	if err != nil {
		return "", fmt.Errorf("获取osu!令牌失败: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("解析osu!令牌失败: %w", err)
	}
	if tr.Error != "" {
		return "", fmt.Errorf("获取osu!令牌失败: %s", tr.message())
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("获取osu!令牌失败: 响应缺少 access_token")
	}

	a.logger.WithField("expires_in", tr.ExpiresIn).Debug("osu!令牌获取成功")
	return tr.AccessToken, nil
}

// FetchMatch GET /matches/{id}
func (a *Adapter) FetchMatch(ctx context.Context, token, matchID string) (*model.OsuMatchResponse, error) {
	matchURL := fmt.Sprintf("%s/matches/%s", strings.TrimSuffix(a.cfg.BaseURL, "/"), url.PathEscape(matchID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, matchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := a.do(req)
	if err != nil {
		return nil, fmt.Errorf("获取比赛%s失败: %w", matchID, err)
	}

	var match model.OsuMatchResponse
	if err := json.Unmarshal(body, &match); err != nil {
		return nil, fmt.Errorf("解析比赛%s失败: %w", matchID, err)
	}

	a.logger.WithFields(logrus.Fields{
		"match_id": matchID,
		"events":   len(match.Events),
		"users":    len(match.Users),
	}).Info("成功获取osu!比赛数据")
	return &match, nil
}

// do 发送请求并读取响应体，非 2xx 时返回带状态码与上游错误信息的 error
func (a *Adapter) do(req *http.Request) ([]byte, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.logger.Errorf("关闭osu!响应体失败: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	a.logger.WithFields(logrus.Fields{
		"method": req.Method,
		"path":   req.URL.Path,
		"status": resp.StatusCode,
	}).Debug("osu! API 请求完成")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errRp errorResponse
		if json.Unmarshal(body, &errRp) == nil && errRp.Error != "" {
			return nil, fmt.Errorf("%s: %s", resp.Status, errRp.message())
		}
		return nil, fmt.Errorf("%s", resp.Status)
	}
	return body, nil
}
