package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/netutil"
	"github.com/hellodex/cexbridge/config"
	"github.com/hellodex/cexbridge/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// signExpiry is how far in the future X-CS-EXPIRES is stamped.
const signExpiry = 30 * time.Second

// Client talks to the exchange's trading and asset-movement endpoints.
type Client struct {
	Endpoint  string
	ApiKey    string
	ApiSecret string
}

func NewClient() *Client {
	return &Client{
		Endpoint:  config.YmlConfig.Exchange.Endpoint,
		ApiKey:    config.YmlConfig.Exchange.ApiKey,
		ApiSecret: config.YmlConfig.Exchange.ApiSecret,
	}
}

// ExchangeRejected is any non-zero exchange response code.
type ExchangeRejected struct {
	Code    string
	Message string
}

func (e *ExchangeRejected) Error() string {
	return "exchange rejected: code=" + e.Code + " msg=" + e.Message
}

// LiquidityInsufficientCode is the rejection the matching engine returns when
// a market order cannot be filled at the requested size.
const LiquidityInsufficientCode = "300011"

func IsInsufficientLiquidity(err error) bool {
	var er *ExchangeRejected
	if !errors.As(err, &er) {
		return false
	}
	if er.Code == LiquidityInsufficientCode {
		return true
	}
	return strings.Contains(strings.ToLower(er.Message), "insufficient")
}

// Sign derives the request signature. The expiry bucket (floor of expires over
// 30s, in ms) keys an intermediate HMAC, whose hex form then keys the HMAC of
// the payload. GET payloads are the literal query string; POST payloads are
// the exact body bytes sent on the wire.
func Sign(secret string, expires int64, payload string) string {
	key := hmacSha256Hex([]byte(secret), strconv.FormatInt(expires/30000, 10))
	return hmacSha256Hex([]byte(key), payload)
}

func hmacSha256Hex(key []byte, msg string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) makeHeader(payload string) http.Header {
	expires := time.Now().Add(signExpiry).UnixMilli()

	header := http.Header{}
	header.Add("Content-Type", "application/json")
	header.Add("X-CS-APIKEY", c.ApiKey)
	header.Add("X-CS-SIGN", Sign(c.ApiSecret, expires, payload))
	header.Add("X-CS-EXPIRES", cast.ToString(expires))

	return header
}

func (c *Client) post(path string, body []byte) ([]byte, error) {
	req := &netutil.HttpRequest{
		RawURL:  c.Endpoint + path,
		Method:  "POST",
		Headers: c.makeHeader(string(body)),
		Body:    body,
	}

	client := netutil.NewHttpClient()
	resp, err := client.SendRequest(req)
	if err != nil {
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	logger.NewStdLog(path, body, data)

	return data, nil
}

func (c *Client) get(path string, query string) ([]byte, error) {
	rawURL := c.Endpoint + path
	if query != "" {
		rawURL += "?" + query
	}
	req := &netutil.HttpRequest{
		RawURL:  rawURL,
		Method:  "GET",
		Headers: c.makeHeader(query),
	}

	client := netutil.NewHttpClient()
	resp, err := client.SendRequest(req)
	if err != nil {
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	logger.NewStdLog(path, []byte(`{"query":"`+query+`"}`), data)

	return data, nil
}

// checkCode treats code 0 and "0" as success; anything else becomes an
// ExchangeRejected carrying the upstream code and message.
func checkCode(data []byte) error {
	code := gjson.GetBytes(data, "code")
	if !code.Exists() {
		return &ExchangeRejected{Code: "-1", Message: "response missing code"}
	}
	if code.String() == "0" {
		return nil
	}

	message := gjson.GetBytes(data, "message").String()
	if message == "" {
		message = gjson.GetBytes(data, "msg").String()
	}
	return &ExchangeRejected{Code: code.String(), Message: message}
}
