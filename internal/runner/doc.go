/*
Package runner executes documented operations against a live server.

# Overview

A send runs in five steps:
  - Resolve the declared parameters (path-level first, operation-level
    overriding by name and location, references followed through
    components.parameters)
  - Pick the base URL (explicit server value, else the first declared
    server, with {variable} placeholders replaced by their defaults)
  - Substitute path parameters, append query parameters in declaration
    order, add header and cookie parameters
  - Attach captured credentials for the operation's security requirements
  - Execute and capture status, headers, body and the decoded JSON body

# Working State

WorkingState keeps, per operation key "<path>-<method>", the values typed
by the user, the last result and a busy flag. It lives only in memory and
is never merged into the document.

The busy flag is advisory. A second Send for the same key is allowed and
its result replaces the first one when it lands.

# Errors

Send never returns an error. A malformed URL, an unreachable host, a body
that cannot be encoded or a blocked request all end up in Result.Error.

# Missing parameters

Required parameters without a value are handled per MissingPolicy:
  - MissingIgnore sends the request as is
  - MissingWarn sends it and lists the names in Result.Warnings
  - MissingBlock does not send it and names them in Result.Error

# Example Usage

	r, err := runner.New(st, runner.Options{Timeout: 10 * time.Second})
	if err != nil {
		return err
	}
	key := runner.Key("/pets/{petId}", "get")
	r.State().SetParam(key, "petId", "42")
	result := r.Send(ctx, "/pets/{petId}", "get")
	if result.Failed() {
		fmt.Println(result.Error)
	}
*/
package runner
