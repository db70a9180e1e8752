package internal

import (
	esv7 "github.com/elastic/go-elasticsearch/v7"

	"github.com/sanLimbu/taskflow/internal"
	"github.com/sanLimbu/taskflow/internal/envvar"
)

// NewElasticSearch instantiates the ElasticSearch client using configuration defined in environment variables.
// It returns a nil client when ELASTICSEARCH_URL is empty.
func NewElasticSearch(conf *envvar.Configuration) (*esv7.Client, error) {
	addr, err := conf.Get("ELASTICSEARCH_URL")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get ELASTICSEARCH_URL")
	}

	if addr == "" {
		return nil, nil
	}

	es, err := esv7.NewClient(esv7.Config{
		Addresses: []string{addr},
	})
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "elasticsearch.Open")
	}

	res, err := es.Info()
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "es.Info")
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "es.Info %d", res.StatusCode)
	}

	return es, nil
}
