package mq_client

type Exchange struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Queue struct {
	Name    string `yaml:"name"`
	Durable bool   `yaml:"durable"`
}

type Binding struct {
	Queue      string `yaml:"queue"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	CleanStart bool   `yaml:"clean_start"`
}

type Channel struct {
	Prefetch int `yaml:"prefetch"`
}

type MQClientConfig struct {
	Exchange struct {
		Events   Exchange `yaml:"events"`
		Matching Exchange `yaml:"matching"`
	}
	Queue struct {
		Matching Queue `yaml:"matching"`
	}
	Binding struct {
		Matching Binding `yaml:"matching"`
	}
	Channel struct {
		Matching Channel `yaml:"matching"`
	}
}
