// Package config loads elementsize.json.
//
// # Configuration File Structure
//
//	{
//	  "addr": ":8080",
//	  "frameRate": 60,
//	  "debug": false,
//	  "server": {
//	    "readTimeout": "60s",
//	    "writeTimeout": "10s",
//	    "maxMessageSize": 65536,
//	    "allowedOrigins": ["https://app.example.com"]
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "elementsize",
//	    "path": "/metrics"
//	  },
//	  "tracing": {
//	    "enabled": true,
//	    "tracerName": "elementsize"
//	  },
//	  "archive": {
//	    "s3": {"bucket": "timelines", "prefix": "prod/", "region": "eu-west-1"}
//	  }
//	}
//
// Missing fields take the defaults from New. A missing file is not an
// error for Load; LoadFile requires the file to exist.
package config
