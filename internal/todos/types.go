package todos

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Item mirrors a row of the remote todos table.
type Item struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
	Done bool      `json:"done"`
}

// Counts returns how many items are done and pending.
func Counts(items []Item) (done, pending int) {
	for _, it := range items {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	return done, pending
}

// operation is a named GraphQL document.
type operation struct {
	name  string
	query string
}

var (
	getTodos = operation{
		name: "getTodos",
		query: `query getTodos {
  todos {
    done
    id
    text
  }
}`,
	}

	toggleTodo = operation{
		name: "toggleTodo",
		query: `mutation toggleTodo($id: uuid!, $done: Boolean!) {
  update_todos(where: {id: {_eq: $id}}, _set: {done: $done}) {
    returning {
      done
      id
      text
    }
  }
}`,
	}

	addTodo = operation{
		name: "addTodo",
		query: `mutation addTodo($text: String!) {
  insert_todos(objects: {text: $text}) {
    returning {
      id
      text
      done
    }
  }
}`,
	}

	deleteTodo = operation{
		name: "deleteTodo",
		query: `mutation deleteTodo($id: uuid!) {
  delete_todos(where: {id: {_eq: $id}}) {
    returning {
      done
      id
      text
    }
  }
}`,
	}
)

// request is the GraphQL-over-HTTP request body.
type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// response is the GraphQL-over-HTTP response envelope.
type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// returning mirrors the mutation_response shape shared by insert/update/delete.
type returning struct {
	Returning []Item `json:"returning"`
}

func (r returning) first() (Item, bool) {
	if len(r.Returning) == 0 {
		return Item{}, false
	}
	return r.Returning[0], true
}

// GraphQLError is a single entry of a GraphQL errors array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// ResponseError reports GraphQL-level errors returned with a 2xx status.
type ResponseError struct {
	Operation string
	Errors    []GraphQLError
}

func (e *ResponseError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msg := strings.TrimSpace(ge.Message)
		if msg == "" {
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return "graphql " + e.Operation + ": unknown error"
	}
	return "graphql " + e.Operation + ": " + strings.Join(msgs, "; ")
}
