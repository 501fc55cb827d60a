// Package config loads imgupload configuration.
//
// Settings come from, in increasing precedence: built-in defaults, an
// imgupload.json or imgupload.yaml file, a .env file, IMGUPLOAD_*
// environment variables, and finally command line flags (applied by the
// caller).
//
// # Configuration File Structure
//
//	{
//	  "uploadUrl": "https://example.com/gallery/upload/",
//	  "maxFiles": 10,
//	  "maxSize": 10485760,
//	  "allowedTypes": ["image/jpeg", "image/png", "image/gif", "image/bmp"],
//	  "csrfToken": "...",
//	  "server": {
//	    "addr": "localhost:8080",
//	    "storeDir": "uploads",
//	    "s3Bucket": "",
//	    "s3Prefix": "uploads/",
//	    "tempExpiry": "1h"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Resolve("")
//	if err != nil {
//	    errors.Fprint(os.Stderr, err)
//	    os.Exit(1)
//	}
//	w := upload.New(cfg.UploadConfig(), anchors)
package config
