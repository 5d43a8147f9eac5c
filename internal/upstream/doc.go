// Package upstream calls the Yelp Fusion API and turns every failure into a
// uniform *Error carrying the HTTP status to answer with and a JSON object
// describing what went wrong.
//
// A successful call returns the upstream body unchanged. Every error returned
// by Client.Fetch is an *Error, so handlers only need:
//
//	body, err := client.Fetch(ctx, "/businesses/search", params, authorization)
//	var upErr *upstream.Error
//	if errors.As(err, &upErr) {
//	    c.JSON(upErr.StatusCode, gin.H{"error": upErr.Message})
//	}
package upstream
