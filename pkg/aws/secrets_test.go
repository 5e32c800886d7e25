package aws_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KeshRD/BrightBuy-G16/pkg/aws"
)

func TestDBCredentialsEnvSkipsEmptyFields(t *testing.T) {
	creds := aws.DBCredentials{User: "brightbuy", Password: "secret", Database: "storefront"}

	assert.Equal(t, map[string]string{
		"POSTGRES_USER":     "brightbuy",
		"POSTGRES_PASSWORD": "secret",
		"POSTGRES_DB":       "storefront",
	}, creds.Env())
}

func TestDBCredentialsParsesSecretPayload(t *testing.T) {
	payload := `{"POSTGRES_USER":"brightbuy","POSTGRES_PASSWORD":"secret","POSTGRES_DB":"storefront","POSTGRES_HOST":"db.internal","POSTGRES_PORT":"5432"}`

	var creds aws.DBCredentials
	assert.NoError(t, json.Unmarshal([]byte(payload), &creds))
	assert.Equal(t, "brightbuy", creds.User)
	assert.Equal(t, "db.internal", creds.Host)
	assert.Equal(t, "5432", creds.Port)
	assert.Len(t, creds.Env(), 5)
}
