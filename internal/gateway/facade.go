package gateway

// Facade 聚合四个业务域门面，供同步编排器按统一接口消费
type Facade struct {
	*CampaignGateway
	*InvestmentGateway
	*MilestoneGateway
	*GovernanceGateway
}

// NewFacade 创建聚合门面
func NewFacade(caller Caller) *Facade {
	return &Facade{
		CampaignGateway:   NewCampaignGateway(caller),
		InvestmentGateway: NewInvestmentGateway(caller),
		MilestoneGateway:  NewMilestoneGateway(caller),
		GovernanceGateway: NewGovernanceGateway(caller),
	}
}
