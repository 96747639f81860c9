package config

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	Env              string
	AppPort          string
	AppUrl           string
	DBUrl            string
	RedisURL         string
	SendgridAPIKey   string
	AuthPublicKey    *rsa.PublicKey

	LDFlag_CORSHighSecurity    bool
	LDFlag_SendOrderEmails     bool
	LDFlag_RunScheduledActions bool
	LDFlag_SendgridFromEmail   string
	LDFlag_SendgridSandboxMode bool
	LDFlag_SeedDbWithTestData  bool
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second

	defaultSendgridFromEmail = "no-reply@mbeauty.example"
)

// Overridable with -ldflags "-X .../internal/config.AppName=…".
var (
	AppName             = "mbeauty-admin-service"
	LDServerContextKey  = "mbeauty-admin-service"
	LDServerContextKind = "service"
)

// Flags holds the LaunchDarkly-controlled switches.
type Flags struct {
	CORSHighSecurity    bool
	SendOrderEmails     bool
	RunScheduledActions bool
	SendgridFromEmail   string
	SendgridSandboxMode bool
	SeedDbWithTestData  bool
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.Logger.WithError(err).Warn("Could not read .env file")
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	appUrl := os.Getenv("APP_URL_FROM_ANYWHERE")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}

	var secrets map[string]string
	if token := os.Getenv("BWS_ACCESS_TOKEN"); token != "" {
		project := fmt.Sprintf("%s-%s", AppName, env)
		var err error
		secrets, err = secretsFromBitwarden(token, os.Getenv("BWS_ORGANIZATION_ID"), project)
		if err != nil {
			utils.Logger.WithError(err).WithField("project", project).Fatal("Failed to fetch app secrets from Bitwarden")
		}
	} else {
		utils.Logger.Warn("BWS_ACCESS_TOKEN not set, reading secrets from the environment")
		secrets = collectSecrets(os.Getenv)
	}

	dbURL := secrets["DB_URL"]
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL secret is missing")
	}

	pubKey, err := ParseRSAPublicKeyBase64(secrets["AUTH_PUBLIC_KEY_BASE64"])
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse AUTH_PUBLIC_KEY_BASE64")
	}

	var flags Flags
	if ldSDKKey := secrets["LD_SDK_KEY"]; ldSDKKey != "" {
		flags = loadLDFlags(ldSDKKey)
	} else {
		utils.Logger.Warn("LD_SDK_KEY not set, feature flags come from the environment")
		flags = flagsFromEnv(os.Getenv)
	}

	sendgridAPIKey := secrets["SENDGRID_API_KEY"]
	if flags.SendOrderEmails && sendgridAPIKey == "" {
		utils.Logger.Fatal("send_order_emails is on but SENDGRID_API_KEY is missing")
	}

	return &Config{
		OrganizationName: OrganizationName,
		AppName:          AppName,
		Env:              env,
		AppPort:          appPort,
		AppUrl:           appUrl,
		DBUrl:            dbURL,
		RedisURL:         secrets["REDIS_URL"],
		SendgridAPIKey:   sendgridAPIKey,
		AuthPublicKey:    pubKey,

		LDFlag_CORSHighSecurity:    flags.CORSHighSecurity,
		LDFlag_SendOrderEmails:     flags.SendOrderEmails,
		LDFlag_RunScheduledActions: flags.RunScheduledActions,
		LDFlag_SendgridFromEmail:   flags.SendgridFromEmail,
		LDFlag_SendgridSandboxMode: flags.SendgridSandboxMode,
		LDFlag_SeedDbWithTestData:  flags.SeedDbWithTestData,
	}
}

func loadLDFlags(sdkKey string) Flags {
	ldClient, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	defer ldClient.Close()

	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	boolFlag := func(key string) bool {
		v, err := ldClient.BoolVariation(key, ctx, false)
		if err != nil {
			utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", key)
		}
		utils.Logger.Debugf("%s flag: %t", key, v)
		return v
	}

	sgFrom, err := ldClient.StringVariation("sendgrid_from_email", ctx, "")
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_from_email flag")
	}
	if sgFrom == "" {
		sgFrom = defaultSendgridFromEmail
	}

	return Flags{
		CORSHighSecurity:    boolFlag("cors_high_security"),
		SendOrderEmails:     boolFlag("send_order_emails"),
		RunScheduledActions: boolFlag("run_scheduled_actions"),
		SendgridFromEmail:   sgFrom,
		SendgridSandboxMode: boolFlag("sendgrid_sandbox_mode"),
		SeedDbWithTestData:  boolFlag("seed_db_with_test_data"),
	}
}

// flagsFromEnv reads CORS_HIGH_SECURITY, SEND_ORDER_EMAILS, RUN_SCHEDULED_ACTIONS,
// SENDGRID_FROM_EMAIL, SENDGRID_SANDBOX_MODE and SEED_DB_WITH_TEST_DATA. Unparsable booleans are false.
func flagsFromEnv(getenv func(string) string) Flags {
	boolEnv := func(key string, def bool) bool {
		raw := getenv(key)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.Logger.Warnf("Invalid %s '%s', using false", key, raw)
			return false
		}
		return v
	}

	from := getenv("SENDGRID_FROM_EMAIL")
	if from == "" {
		from = defaultSendgridFromEmail
	}
	return Flags{
		CORSHighSecurity:    boolEnv("CORS_HIGH_SECURITY", false),
		SendOrderEmails:     boolEnv("SEND_ORDER_EMAILS", false),
		RunScheduledActions: boolEnv("RUN_SCHEDULED_ACTIONS", true),
		SendgridFromEmail:   from,
		SendgridSandboxMode: boolEnv("SENDGRID_SANDBOX_MODE", false),
		SeedDbWithTestData:  boolEnv("SEED_DB_WITH_TEST_DATA", false),
	}
}

// ParseRSAPublicKeyBase64 decodes a base64 PEM block holding the token
// issuer's public key.
func ParseRSAPublicKeyBase64(b64 string) (*rsa.PublicKey, error) {
	if b64 == "" {
		return nil, fmt.Errorf("public key is empty")
	}
	pemBytes, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}
	return jwt.ParseRSAPublicKeyFromPEM(pemBytes)
}

func (c *Config) Close() {}
