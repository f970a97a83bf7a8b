package client

import (
	"net/url"
	"strconv"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/http/common"
)

func encodeQueryOptions(options history.QueryOptions) string {
	values := make(url.Values)

	if options.Offset > 0 {
		values.Add(common.QueryOffset, strconv.Itoa(options.Offset))
	}
	if options.Limit > 0 {
		values.Add(common.QueryLimit, strconv.Itoa(options.Limit))
	}

	if len(values) == 0 {
		return ""
	}

	return "?" + values.Encode()
}
