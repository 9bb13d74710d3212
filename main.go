package main

import (
	"fmt"
	"html/template"
	"math/rand"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/gorilla/sessions"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/oklog/ulid/v2"
	"github.com/srinathgs/mysqlstore"
	_ "modernc.org/sqlite"
)

const publicPath = "./static"

var (
	db           *sqlx.DB
	sessionStore sessions.Store
	tr           = &renderer{templates: template.Must(template.ParseGlob("views/*.html"))}
	// for use ULID
	entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func getEnv(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val != "" {
		return val
	}
	return defaultValue
}

// connectDB opens MySQL by default; APP_DB_DRIVER=sqlite switches to the
// embedded driver for development and tests, bootstrapping the schema.
func connectDB() (*sqlx.DB, error) {
	if getEnv("APP_DB_DRIVER", "mysql") == "sqlite" {
		dbx, err := sqlx.Open("sqlite", getEnv("APP_DB_PATH", "soundshelf.db"))
		if err != nil {
			return nil, fmt.Errorf("error open sqlite: %w", err)
		}
		if err := applySQLiteSchema(dbx); err != nil {
			dbx.Close()
			return nil, err
		}
		return dbx, nil
	}

	config := mysql.NewConfig()
	config.Net = "tcp"
	config.Addr = getEnv("APP_DB_HOST", "127.0.0.1") + ":" + getEnv("APP_DB_PORT", "3306")
	config.User = getEnv("APP_DB_USER", "soundshelf")
	config.Passwd = getEnv("APP_DB_PASSWORD", "soundshelf")
	config.DBName = getEnv("APP_DB_NAME", "soundshelf")
	config.ParseTime = true

	return sqlx.Open("mysql", config.FormatDSN())
}

// noCache disables client-side caching on every response.
func noCache(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set(echo.HeaderCacheControl, "no-cache, no-store, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		return next(c)
	}
}

func newRequestID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return ""
	}
	return id.String()
}

func newRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	if getEnv("APP_DEBUG", "") != "" {
		e.Debug = true
		e.Logger.SetLevel(log.DEBUG)
	} else {
		e.Logger.SetLevel(log.INFO)
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: newRequestID}))
	e.Use(noCache)

	e.Renderer = tr
	e.Static("/static", publicPath)

	e.GET("/", homeHandler)
	e.GET("/signup", signupPageHandler)
	e.POST("/signup", signupHandler)
	e.GET("/login", loginPageHandler)
	e.POST("/login", loginHandler)
	e.GET("/logout", logoutHandler)

	e.GET("/users", listUsersHandler)
	e.GET("/users/profile", profilePageHandler)
	e.POST("/users/profile", profileHandler)
	e.POST("/users/delete", deleteUserHandler)
	e.GET("/users/:id", showUserHandler)

	e.GET("/playlists", listPlaylistsHandler)
	e.GET("/playlists/add", addPlaylistPageHandler)
	e.POST("/playlists/add", addPlaylistHandler)
	e.GET("/playlists/:id", showPlaylistHandler)
	e.POST("/playlists/:id/delete", deletePlaylistHandler)
	e.GET("/playlists/:id/add-song", addSongToPlaylistPageHandler)
	e.POST("/playlists/:id/add-song", addSongToPlaylistHandler)

	e.GET("/songs", listSongsHandler)
	e.GET("/songs/add", addSongPageHandler)
	e.POST("/songs/add", addSongHandler)
	e.GET("/songs/:id", showSongHandler)
	e.POST("/songs/:id/delete", deleteSongHandler)

	e.GET("/search", searchHandler)

	return e
}

func main() {
	godotenv.Load()

	e := newRouter()

	var err error
	db, err = connectDB()
	if err != nil {
		e.Logger.Fatalf("failed to connect db: %v", err)
		return
	}
	db.SetMaxOpenConns(10)
	defer db.Close()

	secret := []byte(getEnv("APP_SESSION_SECRET", "soundshelf-secret"))
	if db.DriverName() == "mysql" {
		sessionStore, err = mysqlstore.NewMySQLStoreFromConnection(db.DB, "sessions", "/", 86400, secret)
		if err != nil {
			e.Logger.Fatalf("failed to initialize session store: %v", err)
			return
		}
	} else {
		// dev fallback: signed cookie sessions, no server-side record
		sessionStore = sessions.NewCookieStore(secret)
	}

	port := getEnv("APP_PORT", "3000")
	e.Logger.Infof("starting soundshelf server on :%s ...", port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%s", port)))
}
