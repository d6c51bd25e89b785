package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/jerryola1/evergreen/api"
	"github.com/jerryola1/evergreen/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	backendKind := os.Getenv("LEADS_BACKEND")
	if backendKind == "" {
		backendKind = "table"
	}
	store := newStore(backendKind)

	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		redisOpts, err := redis.ParseURL(redisConn)
		if err != nil {
			parts := strings.Split(redisConn, ",")
			redisOpts = &redis.Options{Addr: parts[0]}
			for _, p := range parts[1:] {
				kv := strings.SplitN(p, "=", 2)
				if len(kv) != 2 {
					continue
				}
				switch strings.ToLower(kv[0]) {
				case "password":
					redisOpts.Password = kv[1]
				case "ssl":
					if strings.ToLower(kv[1]) == "true" {
						redisOpts.TLSConfig = &tls.Config{}
					}
				}
			}
		}
		rc := redis.NewClient(redisOpts)
		ttl := 5 * time.Minute
		if v := os.Getenv("CACHE_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid CACHE_TTL: %v", err)
			}
			ttl = d
		}
		store = storage.NewCache(store, rc, ttl)
		log.Info("redis cache enabled")
	}

	var auth *api.Auth
	jwtAudience := os.Getenv("AUTH0_AUDIENCE")
	authDomain := os.Getenv("AUTH0_DOMAIN")
	if authDomain != "" && jwtAudience != "" {
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", authDomain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewAuth(jwks, jwtAudience, "https://"+authDomain+"/")
	} else {
		auth = api.NewAuth(nil, "", "")
	}
	if !auth.Enabled() {
		log.Warn("bearer auth disabled; api is open")
	}

	loader := storage.NewLoader(store)
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if snap, err := loader.Load(startupCtx); err != nil {
		log.Warnf("initial load: %v", err)
	} else {
		log.Infof("loaded %d businesses", snap.Count())
	}
	cancel()

	e := echo.New()
	allowedOrigins := []string{"*"}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		allowedOrigins = allowedOrigins[:0]
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	logger := log.New()
	api.Register(e, store, loader, auth, backendKind, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

func newStore(backendKind string) api.Store {
	switch backendKind {
	case "table":
		connStr := os.Getenv("STORAGE_CONNECTION_STRING")
		tableName := os.Getenv("TABLE_NAME")
		if connStr == "" || tableName == "" {
			log.Fatal("missing storage config")
		}
		store, err := storage.NewTableStore(connStr, tableName)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		return store
	case "rest":
		base := os.Getenv("LEADS_API_BASE")
		if base == "" {
			log.Fatal("missing LEADS_API_BASE")
		}
		timeout := 10 * time.Second
		if v := os.Getenv("LEADS_API_TIMEOUT"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid LEADS_API_TIMEOUT: %v", err)
			}
			timeout = d
		}
		return storage.NewRestStore(base, &http.Client{Timeout: timeout})
	case "mongo":
		uri := os.Getenv("MONGO_URI")
		db := os.Getenv("MONGO_DATABASE")
		coll := os.Getenv("MONGO_COLLECTION")
		if uri == "" || db == "" || coll == "" {
			log.Fatal("missing mongo config")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		store, err := storage.NewMongoStore(ctx, uri, db, coll)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		return store
	default:
		log.Fatalf("unsupported LEADS_BACKEND %q", backendKind)
		return nil
	}
}
