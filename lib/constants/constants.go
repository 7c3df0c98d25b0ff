package constants

// SSM parameters live under SSM_PATH; the short name after the path is also
// the environment variable that overrides it.
const (
	SSM_PATH              = "/visit-permits"
	ALLOWED_ORIGINS       = SSM_PATH + "/ALLOWED_ORIGINS"
	STORAGE_BACKEND       = SSM_PATH + "/STORAGE_BACKEND"
	STORAGE_KEY           = SSM_PATH + "/STORAGE_KEY"
	STORAGE_DIR           = SSM_PATH + "/STORAGE_DIR"
	STORAGE_BUCKET        = SSM_PATH + "/STORAGE_BUCKET"
	STORAGE_PREFIX        = SSM_PATH + "/STORAGE_PREFIX"
	ATTACHMENT_BUCKET     = SSM_PATH + "/ATTACHMENT_BUCKET"
	DATABASE_RDS_ENDPOINT = SSM_PATH + "/DATABASE_RDS_ENDPOINT"
	DATABASE_PORT         = SSM_PATH + "/DATABASE_PORT"
	DATABASE_NAME         = SSM_PATH + "/DATABASE_NAME"
	DATABASE_USERNAME     = SSM_PATH + "/DATABASE_USERNAME"
	DATABASE_PASSWORD     = SSM_PATH + "/DATABASE_PASSWORD"
	SSL_MODE              = SSM_PATH + "/SSL_MODE"
	URL_CACHE_TTL_SECONDS = SSM_PATH + "/URL_CACHE_TTL_SECONDS"
	DRIVER_NAME           = "postgres"
)

const (
	DEFAULT_REGION      = "eu-west-3"
	DEFAULT_STORAGE_KEY = "visit-permit-requests"
	DEFAULT_STORAGE_DIR = "./data"
	PERMIT_STORE_TABLE  = "permit_store"
)

const (
	BACKEND_MEMORY   = "memory"
	BACKEND_FILE     = "file"
	BACKEND_S3       = "s3"
	BACKEND_POSTGRES = "postgres"
)
