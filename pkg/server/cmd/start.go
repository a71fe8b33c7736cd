/* Copyright 2025 Shelfsync Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/server/buildinfo"
	"github.com/shelfsync/shelfsync/pkg/server/config"
	"github.com/shelfsync/shelfsync/pkg/server/controllers"
	"github.com/shelfsync/shelfsync/pkg/server/database"
	"github.com/shelfsync/shelfsync/pkg/server/log"
)

func startCmd(args []string) {
	fs := setupFlagSet("start", "shelfsync-server start")

	port := fs.String("port", "", "Server port (env: PORT, default: 3005)")
	logLevel := fs.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")
	pluginVersion := fs.String("pluginVersion", "", "Plugin version accepted on upload (env: PLUGIN_VERSION, default: "+config.DefaultPluginVersion+")")
	db := addDBFlags(fs)

	fs.Parse(args)

	cfg := loadConfig(fs, *db.envFile, config.Params{
		Port:          *port,
		DBDriver:      *db.driver,
		DBPath:        *db.path,
		DatabaseURL:   *db.databaseURL,
		LogLevel:      *logLevel,
		PluginVersion: *pluginVersion,
	})

	log.SetLevel(cfg.LogLevel)

	app, err := initApp(cfg)
	if err != nil {
		log.ErrorWrap(err, "initializing app")
		os.Exit(1)
	}
	defer database.Close(app.DB)

	stopMaintenance := database.StartMaintenance(app.DB)
	defer stopMaintenance()

	ctl := controllers.New(&app)
	rc := controllers.RouteConfig{
		WebRoutes:   controllers.NewWebRoutes(&app, ctl),
		APIRoutes:   controllers.NewAPIRoutes(&app, ctl),
		Controllers: ctl,
	}

	r, err := controllers.NewRouter(&app, rc)
	if err != nil {
		panic(errors.Wrap(err, "initializing router"))
	}

	log.WithFields(log.Fields{
		"version":        buildinfo.Version,
		"port":           cfg.Port,
		"db_driver":      cfg.DBDriver,
		"plugin_version": cfg.PluginVersion,
	}).Info("Shelfsync server starting")

	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.ErrorWrap(err, "server failed")
		os.Exit(1)
	}
}

func migrateCmd(args []string) {
	fs := setupFlagSet("migrate", "shelfsync-server migrate")
	db := addDBFlags(fs)

	fs.Parse(args)

	cfg := loadConfig(fs, *db.envFile, config.Params{
		DBDriver:    *db.driver,
		DBPath:      *db.path,
		DatabaseURL: *db.databaseURL,
	})

	conn, err := initDB(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.ErrorWrap(err, "migrating database")
		os.Exit(1)
	}
	database.Close(conn)

	log.WithFields(log.Fields{
		"db_driver": cfg.DBDriver,
	}).Info("database is up to date")
}
