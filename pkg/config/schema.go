package config

// configSchema is the JSON Schema every configuration file must satisfy
// before it is decoded.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "log_level": {
      "type": "string",
      "enum": ["debug", "info", "warn", "error"]
    },
    "api": {
      "type": "object",
      "properties": {
        "host": {"type": "string"},
        "port": {"type": "integer", "minimum": 1, "maximum": 65535}
      },
      "additionalProperties": false
    },
    "queue": {
      "type": "object",
      "properties": {
        "max_length": {"type": "integer", "minimum": 1},
        "routes": {
          "type": "object",
          "additionalProperties": {"type": "string", "minLength": 1}
        }
      },
      "additionalProperties": false
    },
    "processor": {
      "type": "object",
      "properties": {
        "poll_interval_seconds": {"type": "integer", "minimum": 1}
      },
      "additionalProperties": false
    },
    "workflows": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "enabled": {"type": "boolean"},
          "max_retries": {"type": "integer", "minimum": 0},
          "queue": {"type": "string"},
          "forward": {"type": "string"},
          "schedule": {"type": "string"},
          "options": {"type": "object"}
        },
        "required": ["enabled"],
        "additionalProperties": false
      }
    }
  },
  "required": ["queue", "workflows"],
  "additionalProperties": false
}`
