package kvstore

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MarshalItemJSON renders an item in DynamoDB JSON, the shape accepted by
// the AWS CLI: every attribute is an object with a single type key, e.g.
// {"Name": {"S": "Alice"}}.
func MarshalItemJSON(item map[string]types.AttributeValue, indent bool) ([]byte, error) {
	doc, err := itemDocument(item)
	if err != nil {
		return nil, err
	}
	return marshalDocument(doc, indent)
}

// MarshalPutItemJSON renders a PutItem request in the shape accepted by
// "aws dynamodb put-item --cli-input-json".
func MarshalPutItemJSON(input *dynamodb.PutItemInput, indent bool) ([]byte, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}
	item, err := itemDocument(input.Item)
	if err != nil {
		return nil, err
	}
	return marshalDocument(map[string]interface{}{
		"TableName": aws.ToString(input.TableName),
		"Item":      item,
	}, indent)
}

// UnmarshalItemJSON parses an item in DynamoDB JSON.
func UnmarshalItemJSON(data []byte) (map[string]types.AttributeValue, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse item: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("item must be a JSON object")
	}

	item := make(map[string]types.AttributeValue, len(doc))
	for name, raw := range doc {
		av, err := parseAttribute(raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		item[name] = av
	}
	return item, nil
}

func marshalDocument(doc interface{}, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

func itemDocument(item map[string]types.AttributeValue) (map[string]interface{}, error) {
	doc := make(map[string]interface{}, len(item))
	for name, av := range item {
		v, err := attributeDocument(av)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		doc[name] = v
	}
	return doc, nil
}

func attributeDocument(av types.AttributeValue) (interface{}, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return map[string]interface{}{"S": v.Value}, nil
	case *types.AttributeValueMemberN:
		return map[string]interface{}{"N": v.Value}, nil
	case *types.AttributeValueMemberB:
		return map[string]interface{}{"B": v.Value}, nil
	case *types.AttributeValueMemberBOOL:
		return map[string]interface{}{"BOOL": v.Value}, nil
	case *types.AttributeValueMemberNULL:
		return map[string]interface{}{"NULL": v.Value}, nil
	case *types.AttributeValueMemberSS:
		return map[string]interface{}{"SS": v.Value}, nil
	case *types.AttributeValueMemberNS:
		return map[string]interface{}{"NS": v.Value}, nil
	case *types.AttributeValueMemberBS:
		return map[string]interface{}{"BS": v.Value}, nil
	case *types.AttributeValueMemberL:
		list := make([]interface{}, len(v.Value))
		for i, elem := range v.Value {
			d, err := attributeDocument(elem)
			if err != nil {
				return nil, err
			}
			list[i] = d
		}
		return map[string]interface{}{"L": list}, nil
	case *types.AttributeValueMemberM:
		m, err := itemDocument(v.Value)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"M": m}, nil
	}
	return nil, fmt.Errorf("unsupported attribute type %T", av)
}

func parseAttribute(raw json.RawMessage) (types.AttributeValue, error) {
	var typed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &typed); err != nil {
		return nil, fmt.Errorf("attribute value must be an object: %w", err)
	}
	if len(typed) != 1 {
		return nil, fmt.Errorf("attribute value must have exactly one type key, got %d", len(typed))
	}

	for key, value := range typed {
		switch key {
		case "S":
			var s string
			err := json.Unmarshal(value, &s)
			return &types.AttributeValueMemberS{Value: s}, err
		case "N":
			var n string
			err := json.Unmarshal(value, &n)
			return &types.AttributeValueMemberN{Value: n}, err
		case "B":
			var b []byte
			err := json.Unmarshal(value, &b)
			return &types.AttributeValueMemberB{Value: b}, err
		case "BOOL":
			var b bool
			err := json.Unmarshal(value, &b)
			return &types.AttributeValueMemberBOOL{Value: b}, err
		case "NULL":
			var b bool
			err := json.Unmarshal(value, &b)
			return &types.AttributeValueMemberNULL{Value: b}, err
		case "SS":
			var ss []string
			err := json.Unmarshal(value, &ss)
			return &types.AttributeValueMemberSS{Value: ss}, err
		case "NS":
			var ns []string
			err := json.Unmarshal(value, &ns)
			return &types.AttributeValueMemberNS{Value: ns}, err
		case "BS":
			var bs [][]byte
			err := json.Unmarshal(value, &bs)
			return &types.AttributeValueMemberBS{Value: bs}, err
		case "L":
			var elems []json.RawMessage
			if err := json.Unmarshal(value, &elems); err != nil {
				return nil, err
			}
			list := make([]types.AttributeValue, len(elems))
			for i, elem := range elems {
				av, err := parseAttribute(elem)
				if err != nil {
					return nil, err
				}
				list[i] = av
			}
			return &types.AttributeValueMemberL{Value: list}, nil
		case "M":
			m, err := UnmarshalItemJSON(value)
			if err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberM{Value: m}, nil
		default:
			return nil, fmt.Errorf("unknown attribute type %s", key)
		}
	}
	return nil, fmt.Errorf("attribute value is empty")
}
