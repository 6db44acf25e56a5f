package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/phambaophuc/face-detection/internal/functions"
)

func main() {
	lambda.Start(functions.Hello)
}
