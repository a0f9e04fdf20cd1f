// Package config provides configuration parsing for flexi projects.
//
// The configuration is stored in flexi.json at the project root. This
// package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-app",
//	  "routes": {
//	    "dir": "app/routes",
//	    "extensions": [".go"]
//	  },
//	  "static": {
//	    "dir": "public",
//	    "prefix": "/"
//	  },
//	  "dev": {
//	    "port": 3000,
//	    "host": "localhost",
//	    "watch": ["app", "public"],
//	    "hotReload": true
//	  },
//	  "build": {
//	    "output": "dist"
//	  },
//	  "deploy": {
//	    "bucket": "my-app-site",
//	    "region": "us-east-1"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Port:", cfg.Dev.Port)
package config
